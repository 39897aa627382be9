package config

import "time"

const (
	defaultGatewayTimeout = 5 * time.Second
	defaultChannelPrefix  = "forge:changes:"
)

// Gateway 远端数据网关相关配置
type Gateway struct {
	TimeoutMs     int    `json:"timeout_ms" yaml:"timeout_ms"`
	ChannelPrefix string `json:"channel_prefix" yaml:"channel_prefix"`
}

func (g *Gateway) Timeout() time.Duration {
	if g == nil || g.TimeoutMs <= 0 {
		return defaultGatewayTimeout
	}
	return time.Duration(g.TimeoutMs) * time.Millisecond
}

func (g *Gateway) Prefix() string {
	if g == nil || g.ChannelPrefix == "" {
		return defaultChannelPrefix
	}
	return g.ChannelPrefix
}

func ProvideGatewayConfig(cfg *Config) *Gateway {
	return cfg.Gateway
}
