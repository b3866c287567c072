package transport

import (
	"context"
	"net"
	"strconv"
)

// 端口 0 表示由系统分配
const (
	MinPort = 0
	MaxPort = 65535
)

// Server 由 app 管理生命周期的服务
type Server interface {
	// Run 启动并阻塞直到停止
	Run() error
	// Shutdown 优雅停止
	Shutdown(context.Context) error
}

// ValidateAddress 检查 host:port 形式的监听地址，host 可为空
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return false
	}
	if host != "" && !validHost(host) {
		return false
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return p >= MinPort && p <= MaxPort
}

func validHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for i, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
		case r == '-':
			// 不能以连字符开头或结尾
			if i == 0 || i == len(host)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
