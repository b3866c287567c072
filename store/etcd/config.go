package etcd

import (
	"time"

	"github.com/kochabx/passport/core/tag"
)

// Config etcd 配置
type Config struct {
	Endpoints           []string      `json:"endpoints" default:"localhost:2379"`
	Username            string        `json:"username"`
	Password            string        `json:"password"`
	DialTimeout         time.Duration `json:"dialTimeout" default:"5s"`
	KeepAliveTime       time.Duration `json:"keepAliveTime" default:"30s"`
	KeepAliveTimeout    time.Duration `json:"keepAliveTimeout" default:"5s"`
	AutoSyncInterval    time.Duration `json:"autoSyncInterval"`
	RequestTimeout      time.Duration `json:"requestTimeout" default:"3s"`
	MaxSendMsgSize      int           `json:"maxSendMsgSize" default:"2097152"`
	MaxRecvMsgSize      int           `json:"maxRecvMsgSize" default:"4194304"`
	RejectOldCluster    bool          `json:"rejectOldCluster"`
	PermitWithoutStream bool          `json:"permitWithoutStream"`
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}
