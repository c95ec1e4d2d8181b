package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local 本地磁盘；开发环境和测试用
type Local struct {
	Dir       string
	PublicURL string // 为空时 URL 用 /api/files/download/<id>
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: %w", err)
	}
	return &Local{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) Upload(_ context.Context, name, _ string, r io.Reader) (Object, error) {
	key := newKey(name)
	f, err := os.Create(filepath.Join(l.Dir, key))
	if err != nil {
		return Object{}, fmt.Errorf("storage/local: create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return Object{}, fmt.Errorf("storage/local: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return Object{}, err
	}
	return Object{FileID: key, URL: l.url(key)}, nil
}

func (l *Local) Download(_ context.Context, fileID string) (io.ReadCloser, error) {
	if !validKey(fileID) {
		return nil, ErrObjectNotFound
	}
	f, err := os.Open(filepath.Join(l.Dir, fileID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, fileID string) error {
	if !validKey(fileID) {
		return ErrObjectNotFound
	}
	err := os.Remove(filepath.Join(l.Dir, fileID))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}

func (l *Local) url(key string) string {
	if l.PublicURL == "" {
		return "/api/files/download/" + key
	}
	return l.PublicURL + "/" + key
}
