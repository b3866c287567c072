package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kochabx/passport/app"
	"github.com/kochabx/passport/core/auth/session"
	"github.com/kochabx/passport/log"
	"github.com/kochabx/passport/transport"
	transporthttp "github.com/kochabx/passport/transport/http"
	"github.com/kochabx/passport/transport/http/metrics"
)

func newServeCmd(c *cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server and the orphan sweeper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(commandContext(cmd), watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload log level when the config file changes")
	return cmd
}

func (c *cli) serve(ctx context.Context, watch bool) error {
	cfg := c.cfg
	prom := metrics.Prom
	if cfg.HTTP.Metrics.GoCollector {
		if err := prom.WithGoCollectorRuntimeMetrics(); err != nil {
			return err
		}
	}
	if cfg.HTTP.Metrics.BuildInfoCollector {
		if err := prom.WithBuildInfoCollector(); err != nil {
			return err
		}
	}

	m := session.NewMetrics(prom.Registry())
	svc, err := c.deps.service(ctx, nil, m)
	if err != nil {
		return err
	}

	var servers []transport.Server
	if cfg.Sweeper.Enabled {
		sink, err := c.deps.auditSink()
		if err != nil {
			return err
		}
		sw, err := session.NewSweeper(svc.Config(), c.deps.cache, cfg.Sweeper,
			session.WithLogger(c.logger),
			session.WithAuditSink(sink),
			session.WithMetrics(m),
		)
		if err != nil {
			return err
		}
		servers = append(servers, sw)
	}

	if cfg.HTTP.Enabled {
		srv, err := transporthttp.NewServer(cfg.HTTP,
			transporthttp.WithLogger(c.logger),
			transporthttp.WithGatherer(prom.Registry()),
			transporthttp.WithHealthChecks(c.deps.healthChecks()...),
		)
		if err != nil {
			return err
		}
		servers = append(servers, srv)
	}

	if watch {
		if err := c.conf.Watch(); err != nil {
			c.logger.Warn().Err(err).Msg("config watch disabled")
		}
	}

	a := app.New(
		app.WithContext(ctx),
		app.WithLogger(c.logger),
		app.WithServers(servers...),
		app.WithCleanup("dependencies", func(context.Context) error { return c.deps.close() }, 10*time.Second),
	)
	c.logger.Info().
		Str("cache", cfg.Cache.Backend).
		Bool("sweeper", cfg.Sweeper.Enabled).
		Bool("http", cfg.HTTP.Enabled).
		Msg("passport starting")
	return a.Run()
}

// applyLogLevel 配置变更后调整全局级别，不能低于启动时的级别
func applyLogLevel(level string) {
	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Err(err).Str("level", level).Msg("ignore invalid log level")
		return
	}
	zerolog.SetGlobalLevel(lv)
	log.Info().Str("level", lv.String()).Msg("log level changed")
}
