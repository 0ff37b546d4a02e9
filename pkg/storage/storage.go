package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/tamu-thinktank/website-sub002/config"
)

// Object 上传完成后的文件信息
type Object struct {
	FileID string `json:"file_id"`
	Link   string `json:"link"`
}

// Uploader 简历文件上传接口
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (*Object, error)
	// Delete 删除已上传的文件，fileID 为 Upload 返回的 FileID
	Delete(ctx context.Context, fileID string) error
}

// NewUploader 按配置创建 GCS 或 Google Drive 上传器
func NewUploader(ctx context.Context, cfg *config.StorageConfig) (Uploader, error) {
	switch cfg.Provider {
	case "gcs":
		return NewGCSUploader(ctx, cfg)
	case "drive":
		return NewDriveUploader(ctx, cfg)
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Provider)
	}
}

// ResumeObjectName 生成简历对象名：resumes/<cycle>/<application>-<unix>.pdf
func ResumeObjectName(cycleID, applicationID string, now time.Time) string {
	return path.Join("resumes", cycleID, fmt.Sprintf("%s-%d.pdf", applicationID, now.Unix()))
}

var pdfMagic = []byte("%PDF-")

// IsPDF 根据文件头判断是否为 PDF
func IsPDF(head []byte) bool {
	return bytes.HasPrefix(head, pdfMagic)
}

// SniffPDF 读取文件头做 PDF 校验，并返回可继续完整读取的 Reader
func SniffPDF(r io.Reader) (io.Reader, bool, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false, err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), IsPDF(head), nil
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}
