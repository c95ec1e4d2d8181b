// Package storage forwards uploaded files to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("storage: object not found")

type Object struct {
	FileID string `json:"fileId"`
	URL    string `json:"fileUrl"`
}

type Provider interface {
	Upload(ctx context.Context, name, mime string, r io.Reader) (Object, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
	Delete(ctx context.Context, fileID string) error
}

// newKey 对象名：随机 id + 原始扩展名
func newKey(name string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(name))
}

// validKey 拒绝带路径的 id
func validKey(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// UploadMultipart 先落本地临时目录再转发，结束后尽力删除临时文件
func UploadMultipart(ctx context.Context, p Provider, tmpDir string, fh *multipart.FileHeader) (Object, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return Object{}, fmt.Errorf("storage: tmp dir: %w", err)
	}
	tmp := filepath.Join(tmpDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fh.Filename)))
	if err := saveTo(fh, tmp); err != nil {
		return Object{}, err
	}
	defer os.Remove(tmp)

	f, err := os.Open(tmp)
	if err != nil {
		return Object{}, err
	}
	defer f.Close()

	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return p.Upload(ctx, fh.Filename, mime, f)
}

func saveTo(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
