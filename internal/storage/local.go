package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local 写入本地目录，由路由以 urlPrefix 静态提供
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(ctx context.Context, obj Object) (string, error) {
	ext, err := Validate(obj.Size, obj.ContentType)
	if err != nil {
		return "", err
	}
	name := objectName(ext)
	path := filepath.Join(l.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	// 多读一个字节用于发现声明大小与实际内容不符
	n, err := io.Copy(f, io.LimitReader(obj.Body, MaxAvatarBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > MaxAvatarBytes {
		err = fmt.Errorf("avatar exceeds %d bytes", MaxAvatarBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return l.urlPrefix + "/" + name, nil
}
