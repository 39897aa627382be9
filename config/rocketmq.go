package config

type RocketMQConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	Producer Producer `yaml:"producer"`
}

type Producer struct {
	Topic string `yaml:"topic"`
}

// Enabled 未配置 endpoint 时退化为日志发布
func (c *RocketMQConfig) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

func ProvideRocketMQConfig(cfg *Config) *RocketMQConfig {
	return cfg.RocketMQ
}
