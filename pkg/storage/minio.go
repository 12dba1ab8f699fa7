// Package storage 提供了与对象存储服务（MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"time"

	"finreport-rag-go/internal/config"
	"finreport-rag-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store 封装了一个长生命周期的 MinIO 客户端和目标存储桶。
// 进程启动时创建一次，之后以只读方式注入到各个服务中。
type Store struct {
	client     *minio.Client
	bucketName string
}

// New 初始化 MinIO 客户端并确保指定的存储桶存在。
func New(cfg config.MinIOConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}
	log.Infof("MinIO 客户端初始化成功, bucket: %s", cfg.BucketName)

	return &Store{client: client, bucketName: cfg.BucketName}, nil
}

// UploadFile 将本地文件上传到指定的对象路径。
// 同名对象直接覆盖（last-write-wins），即 upsert 语义。
func (s *Store) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	info, err := s.client.FPutObject(ctx, s.bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("上传对象 '%s' 失败: %w", objectName, err)
	}
	log.Infof("[Storage] 对象上传成功, object: %s, size: %d", info.Key, info.Size)
	return nil
}

// PresignedDownloadURL 为已存储的对象生成限时下载链接。
func (s *Store) PresignedDownloadURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名 URL 失败: %w", err)
	}
	return presignedURL.String(), nil
}
