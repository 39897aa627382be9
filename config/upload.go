package config

import "time"

const (
	defaultMaxImageBytes int64 = 5 << 20
	defaultUploadTimeout       = 30 * time.Second
)

type Upload struct {
	MaxImageBytes int64  `json:"max_image_bytes" yaml:"max_image_bytes"`
	KeyPrefix     string `json:"key_prefix" yaml:"key_prefix"`
	TimeoutMs     int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout 单次写对象存储的超时，默认 30s
func (u *Upload) Timeout() time.Duration {
	if u == nil || u.TimeoutMs <= 0 {
		return defaultUploadTimeout
	}
	return time.Duration(u.TimeoutMs) * time.Millisecond
}

// MaxBytes 单张图片上限，默认 5MB
func (u *Upload) MaxBytes() int64 {
	if u == nil || u.MaxImageBytes <= 0 {
		return defaultMaxImageBytes
	}
	return u.MaxImageBytes
}

func (u *Upload) Prefix() string {
	if u == nil || u.KeyPrefix == "" {
		return "images"
	}
	return u.KeyPrefix
}

func ProvideUploadConfig(cfg *Config) *Upload {
	return cfg.Upload
}
