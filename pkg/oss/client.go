package oss

import (
	"context"
	"io"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"

	"Forge/config"
)

// Store 单 bucket 的对象存储
type Store struct {
	client     *oss.Client
	bucket     string
	publicBase string
}

// NewStore 配置了 ak/sk 时使用静态凭证，否则读取 OSS_ACCESS_KEY_ID 等环境变量
func NewStore(cfg *config.OssConfig) *Store {
	var provider credentials.CredentialsProvider
	if cfg.AccessKeyID != "" {
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret)
	} else {
		provider = credentials.NewEnvironmentVariableCredentialsProvider()
	}

	ossCfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(provider).
		WithEndpoint(cfg.Endpoint).
		WithRegion(cfg.Region)

	base := cfg.PublicBase
	if base == "" {
		base = "https://" + cfg.Bucket + "." + cfg.Endpoint + "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	return &Store{
		client:     oss.NewClient(ossCfg),
		bucket:     cfg.Bucket,
		publicBase: base,
	}
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &oss.PutObjectRequest{
		Bucket:        oss.Ptr(s.bucket),
		Key:           oss.Ptr(key),
		ContentType:   oss.Ptr(contentType),
		ContentLength: oss.Ptr(size),
		Body:          body,
	})
	return err
}

// URL 对外访问地址
func (s *Store) URL(key string) string {
	return s.publicBase + key
}

func (s *Store) Bucket() string {
	return s.bucket
}
