package config

type OssConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	Region          string `json:"region" yaml:"region"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	AccessKeyID     string `json:"ak" yaml:"ak"`
	AccessKeySecret string `json:"sk" yaml:"sk"`
	// PublicBase 对外访问前缀，例如 CDN 域名
	PublicBase string `json:"public_base" yaml:"public_base"`
}

func ProvideOssConfig(cfg *Config) *OssConfig {
	return cfg.Oss
}
