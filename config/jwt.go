package config

// Jwt 只做校验，令牌由外部认证服务签发
type Jwt struct {
	Secret string `json:"secret" yaml:"secret"`
}
