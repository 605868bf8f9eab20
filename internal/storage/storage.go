// Package storage 保存用户上传的头像，支持本地磁盘与 MinIO 两种后端
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/pkg/errcode"
)

// MaxAvatarBytes 头像大小上限 2 MiB
const MaxAvatarBytes int64 = 2 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Object 待写入的文件
type Object struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// Store 写入对象并返回可公开访问的 URL
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// New 按配置选择后端
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinio(ctx, cfg.Minio)
	case "local", "":
		return NewLocal(cfg.UploadDir, cfg.URLPrefix)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// Validate 检查大小与 MIME 类型，返回对象扩展名
func Validate(size int64, contentType string) (string, error) {
	if size <= 0 {
		return "", errcode.BadRequest("avatar file is empty")
	}
	if size > MaxAvatarBytes {
		return "", errcode.BadRequest("avatar must be at most %d bytes", MaxAvatarBytes)
	}
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := extensions[mime]
	if !ok {
		return "", errcode.BadRequest("only image files are allowed (jpg, jpeg, png, gif, webp)")
	}
	return ext, nil
}

// objectName 随机文件名，避免覆盖与路径注入
func objectName(ext string) string {
	return uuid.New().String() + ext
}
