package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tamu-thinktank/website-sub002/config"
)

// DriveUploader 上传到 Google Drive 指定目录
type DriveUploader struct {
	svc      *drive.Service
	folderID string
}

// NewDriveUploader 创建 Drive 服务
func NewDriveUploader(ctx context.Context, cfg *config.StorageConfig) (*DriveUploader, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 Drive 服务失败: %w", err)
	}
	return &DriveUploader{svc: svc, folderID: cfg.DriveFolderID}, nil
}

// Upload 上传文件，FileID 为 Drive 文件 ID，Link 为网页查看链接
// Drive 不支持路径，name 中的目录部分会被压平为文件名
func (u *DriveUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (*Object, error) {
	meta := &drive.File{
		Name:     sanitizeName(path.Clean(name)),
		MimeType: contentType,
		Parents:  []string{u.folderID},
	}

	f, err := u.svc.Files.Create(meta).
		Media(r).
		SupportsAllDrives(true).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("上传到 Drive 失败: %w", err)
	}

	return &Object{FileID: f.Id, Link: f.WebViewLink}, nil
}

// Delete 删除 Drive 文件
func (u *DriveUploader) Delete(ctx context.Context, fileID string) error {
	if err := u.svc.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("删除 Drive 文件失败: %w", err)
	}
	return nil
}
