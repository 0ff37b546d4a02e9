package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tamu-thinktank/website-sub002/config"
)

// GCSUploader 上传到 Google Cloud Storage
type GCSUploader struct {
	client *gcs.Client
	bucket string
}

// NewGCSUploader 创建 GCS 客户端
func NewGCSUploader(ctx context.Context, cfg *config.StorageConfig) (*GCSUploader, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}
	return &GCSUploader{client: client, bucket: cfg.Bucket}, nil
}

// Upload 以流的方式写入对象，FileID 为对象名
func (u *GCSUploader) Upload(ctx context.Context, name, contentType string, r io.Reader) (*Object, error) {
	obj := u.client.Bucket(u.bucket).Object(name)
	err := copyAndCommit(ctx, func(ctx context.Context) io.WriteCloser {
		w := obj.NewWriter(ctx)
		w.ContentType = contentType
		return w
	}, r)
	if err != nil {
		return nil, err
	}
	return &Object{FileID: name, Link: gcsLink(u.bucket, name)}, nil
}

// Delete 删除对象，对象不存在视为成功
func (u *GCSUploader) Delete(ctx context.Context, fileID string) error {
	err := u.client.Bucket(u.bucket).Object(fileID).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("删除 GCS 对象失败: %w", err)
	}
	return nil
}

// copyAndCommit 写入失败时先取消 writer 的 ctx 再 Close，
// GCS 的 Writer.Close 会提交已写入的部分，取消后上传被放弃。
func copyAndCommit(ctx context.Context, open func(context.Context) io.WriteCloser, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := open(ctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("写入 GCS 对象失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("提交 GCS 对象失败: %w", err)
	}
	return nil
}

// Close 关闭客户端
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

func gcsLink(bucket, name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, (&url.URL{Path: name}).EscapedPath())
}
