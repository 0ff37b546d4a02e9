package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeObjectName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	got := ResumeObjectName("cycle-1", "app-1", now)
	assert.Equal(t, "resumes/cycle-1/app-1-1700000000.pdf", got)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n")))
	assert.False(t, IsPDF([]byte("PK\x03\x04")))
	assert.False(t, IsPDF(nil))
}

func TestSniffPDF_KeepsContent(t *testing.T) {
	body := "%PDF-1.4 hello resume"
	r, ok, err := SniffPDF(strings.NewReader(body))
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, string(all))
}

func TestSniffPDF_ShortInput(t *testing.T) {
	r, ok, err := SniffPDF(strings.NewReader("%P"))
	require.NoError(t, err)
	assert.False(t, ok)

	all, _ := io.ReadAll(r)
	assert.Equal(t, "%P", string(all))
}

func TestGCSLink(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/bucket/resumes/c/a%20b.pdf",
		gcsLink("bucket", "resumes/c/a b.pdf"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "resumes_c_a.pdf", sanitizeName("resumes/c/a.pdf"))
}

// recordingWriter 记录 Close 时 ctx 是否已取消
type recordingWriter struct {
	ctx             context.Context
	written         int
	closed          bool
	canceledAtClose bool
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.written += len(p)
	return len(p), nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	w.canceledAtClose = w.ctx.Err() != nil
	return nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("limit exceeded") }

func TestCopyAndCommit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var w *recordingWriter
		err := copyAndCommit(context.Background(), func(ctx context.Context) io.WriteCloser {
			w = &recordingWriter{ctx: ctx}
			return w
		}, strings.NewReader("%PDF-1.4 body"))
		require.NoError(t, err)
		assert.True(t, w.closed)
		assert.False(t, w.canceledAtClose, "成功时不应取消上传")
		assert.Equal(t, 13, w.written)
	})

	t.Run("ReadErrorAbandonsUpload", func(t *testing.T) {
		var w *recordingWriter
		err := copyAndCommit(context.Background(), func(ctx context.Context) io.WriteCloser {
			w = &recordingWriter{ctx: ctx}
			return w
		}, io.MultiReader(strings.NewReader("%PDF-"), failingReader{}))
		require.Error(t, err)
		assert.True(t, w.closed)
		assert.True(t, w.canceledAtClose, "读取失败时必须先取消再 Close")
	})
}
