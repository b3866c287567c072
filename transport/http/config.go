package http

import "time"

// Config 运维 HTTP 服务配置
type Config struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr" default:":8081"`

	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" default:"5s"`

	Metrics MetricsConfig `json:"metrics"`
	Health  HealthConfig  `json:"health"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path" default:"/metrics"`

	// 注册 Go 运行时与构建信息采集器
	GoCollector        bool `json:"goCollector"`
	BuildInfoCollector bool `json:"buildInfoCollector"`
}

type HealthConfig struct {
	Enabled bool          `json:"enabled"`
	Path    string        `json:"path" default:"/health"`
	Timeout time.Duration `json:"timeout" default:"3s"`
}
