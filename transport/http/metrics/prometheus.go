// Package metrics 进程级 Prometheus 注册表
package metrics

import (
	"errors"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prom 默认注册表
var Prom = New()

type Prometheus struct {
	registry *prometheus.Registry
}

func New() *Prometheus {
	return &Prometheus{registry: prometheus.NewRegistry()}
}

// WithGoCollectorRuntimeMetrics 注册 Go 运行时与进程采集器
func (p *Prometheus) WithGoCollectorRuntimeMetrics() error {
	return registerAll(p.registry,
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (p *Prometheus) WithBuildInfoCollector() error {
	return registerAll(p.registry, collectors.NewBuildInfoCollector())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// registerAll 忽略重复注册
func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
