package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthCheck 依赖健康检查，Check 返回 nil 表示健康
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Health.Timeout)
	defer cancel()

	report := healthReport{Status: "ok"}
	if len(s.checks) > 0 {
		report.Checks = make(map[string]string, len(s.checks))
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, hc := range s.checks {
		g.Go(func() error {
			status := "ok"
			if err := hc.Check(ctx); err != nil {
				status = err.Error()
				s.logger.Warn().Err(err).Str("check", hc.Name).Msg("health check failed")
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[hc.Name] = status
			if status != "ok" {
				report.Status = "unavailable"
			}
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}
