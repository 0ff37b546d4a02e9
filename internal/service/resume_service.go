package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/storage"
)

const defaultMaxResumeBytes = 5 << 20

var (
	ErrResumeNotPDF    = errors.New("简历仅支持 PDF 格式")
	ErrResumeTooLarge  = errors.New("简历文件过大")
	ErrResumeForbidden = errors.New("无权为该申请上传简历")
)

// ResumeAccess 上传者身份：干事（已登录）或持查询码的申请人
type ResumeAccess struct {
	OfficerID  string
	LookupCode string
}

// ResumeService 简历上传业务接口
type ResumeService interface {
	// Upload 校验并流式上传简历，成功后写回申请
	Upload(ctx context.Context, applicationID string, access ResumeAccess, size int64, r io.Reader) (*dto.ResumeUploadResponse, error)
}

type resumeService struct {
	repo     *repository.Repository
	uploader storage.Uploader
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewResumeService 创建 ResumeService 实例
func NewResumeService(repo *repository.Repository, uploader storage.Uploader, maxBytes int64, logger *zap.Logger) ResumeService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxResumeBytes
	}
	return &resumeService{repo: repo, uploader: uploader, maxBytes: maxBytes, logger: logger, now: time.Now}
}

func (s *resumeService) Upload(ctx context.Context, applicationID string, access ResumeAccess, size int64, r io.Reader) (*dto.ResumeUploadResponse, error) {
	if s.uploader == nil {
		return nil, pkgerrors.ErrProviderUnavailable
	}
	if size > s.maxBytes {
		return nil, ErrResumeTooLarge
	}

	app, err := s.repo.Application.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", applicationID), zap.Error(err))
		return nil, err
	}
	if access.OfficerID == "" && !checkLookupCode(app, access.LookupCode) {
		return nil, ErrResumeForbidden
	}

	body, ok, err := storage.SniffPDF(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrResumeNotPDF
	}

	lr := &sizeLimitedReader{r: body, remaining: s.maxBytes}
	now := s.now()
	obj, err := s.uploader.Upload(ctx, storage.ResumeObjectName(app.CycleID, app.ApplicationID, now), "application/pdf", lr)
	if err != nil {
		if lr.exceeded {
			return nil, ErrResumeTooLarge
		}
		s.logger.Error("上传简历失败", zap.String("application_id", applicationID), zap.Error(err))
		return nil, err
	}

	app.ResumeFileID = obj.FileID
	app.ResumeURL = obj.Link
	app.ResumeUploaded = &now
	if access.OfficerID != "" {
		app.UpdatedBy = &access.OfficerID
	}
	if err := s.repo.Application.Update(ctx, app); err != nil {
		s.logger.Error("保存简历信息失败",
			zap.String("application_id", applicationID),
			zap.String("file_id", obj.FileID),
			zap.Error(err),
		)
		s.discard(ctx, obj.FileID)
		return nil, err
	}

	s.logger.Info("简历已上传", zap.String("application_id", applicationID), zap.String("file_id", obj.FileID))
	return &dto.ResumeUploadResponse{FileID: obj.FileID, Link: obj.Link}, nil
}

const discardTimeout = 10 * time.Second

// discard 删除未能写回申请的文件；请求已取消时仍尝试删除
func (s *resumeService) discard(ctx context.Context, fileID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	if err := s.uploader.Delete(ctx, fileID); err != nil {
		s.logger.Warn("删除孤立简历文件失败，需手动清理", zap.String("file_id", fileID), zap.Error(err))
	}
}

var errResumeLimit = errors.New("resume exceeds size limit")

// sizeLimitedReader 超过上限时返回错误，中断上传
type sizeLimitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// 恰好读满上限时，再探测一个字节确认是否还有数据
		var peek [1]byte
		n, err := l.r.Read(peek[:])
		if n > 0 {
			l.exceeded = true
			return 0, errResumeLimit
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
