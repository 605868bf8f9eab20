package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/pkg/logger"
)

// Minio 写入 MinIO/S3 兼容对象存储
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinio 连接对象存储，bucket 不存在时创建
func NewMinio(ctx context.Context, cfg config.MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("minio bucket created", zap.String("bucket", cfg.Bucket))
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}
	return &Minio{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (m *Minio) Put(ctx context.Context, obj Object) (string, error) {
	ext, err := Validate(obj.Size, obj.ContentType)
	if err != nil {
		return "", err
	}
	name := "avatars/" + objectName(ext)
	if _, err := m.client.PutObject(ctx, m.bucket, name, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return m.publicURL + "/" + m.bucket + "/" + name, nil
}
