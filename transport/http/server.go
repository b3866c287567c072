package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/log"
	"github.com/kochabx/passport/transport"
	"github.com/kochabx/passport/transport/http/metrics"
	"github.com/kochabx/passport/transport/http/middleware"
)

var _ transport.Server = (*Server)(nil)

const (
	defaultName = "ops"
	defaultAddr = ":8081"
)

// Server 运维 HTTP 服务，提供 /metrics 与 /health
type Server struct {
	name     string
	cfg      Config
	engine   *gin.Engine
	server   *http.Server
	logger   *log.Logger
	gatherer prometheus.Gatherer
	checks   []HealthCheck
}

func NewServer(cfg Config, opts ...Option) (*Server, error) {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, err
	}

	s := &Server{
		name:     defaultName,
		cfg:      cfg,
		logger:   log.G,
		gatherer: metrics.Prom.Registry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named(s.name)

	if s.engine == nil {
		gin.SetMode(gin.ReleaseMode)
		s.engine = gin.New()
		s.engine.Use(
			middleware.Recovery(middleware.RecoveryConfig{Logger: s.logger}),
			middleware.GinLoggerWithConfig(middleware.LoggerConfig{
				Logger:    s.logger,
				SkipPaths: []string{cfg.Metrics.Path, cfg.Health.Path},
			}),
		)
	}
	s.routes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s, nil
}

func (s *Server) routes() {
	if s.cfg.Metrics.Enabled {
		s.engine.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}
	if s.cfg.Health.Enabled {
		s.engine.GET(s.cfg.Health.Path, s.health)
	}
}

// Handler 已注册路由的 gin.Engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run() error {
	if !transport.ValidateAddress(s.server.Addr) {
		s.logger.Warn().Msgf("invalid address %q, using default address %s", s.server.Addr, defaultAddr)
		s.server.Addr = defaultAddr
	}
	s.logger.Info().Msgf("%s server listening on %s", s.name, s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
