package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 会话指标，nil 时所有方法为空操作
type Metrics struct {
	issued        prometheus.Counter
	revoked       prometheus.Counter
	verifications *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	sweptKeys     prometheus.Counter
	cacheOps      *prometheus.HistogramVec
}

// NewMetrics 在 reg 上注册会话指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		issued: f.NewCounter(prometheus.CounterOpts{
			Name: "passport_sessions_issued_total",
			Help: "Number of sessions issued.",
		}),
		revoked: f.NewCounter(prometheus.CounterOpts{
			Name: "passport_sessions_revoked_total",
			Help: "Number of sessions revoked.",
		}),
		verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "passport_token_verifications_total",
			Help: "Token verifications by token kind and result.",
		}, []string{"kind", "result"}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "passport_session_lookups_total",
			Help: "Session lookups by result.",
		}, []string{"result"}),
		sweptKeys: f.NewCounter(prometheus.CounterOpts{
			Name: "passport_sweeper_removed_total",
			Help: "Orphaned session keys removed by the sweeper.",
		}),
		cacheOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "passport_cache_op_duration_seconds",
			Help:    "Latency of session cache operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
	}
}

func (m *Metrics) incIssued() {
	if m != nil {
		m.issued.Inc()
	}
}

func (m *Metrics) incRevoked() {
	if m != nil {
		m.revoked.Inc()
	}
}

func (m *Metrics) observeVerification(kind string, v Verification) {
	if m != nil {
		m.verifications.WithLabelValues(kind, v.Failure.String()).Inc()
	}
}

func (m *Metrics) observeLookup(result string) {
	if m != nil {
		m.lookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) addSwept(n int) {
	if m != nil && n > 0 {
		m.sweptKeys.Add(float64(n))
	}
}

// observeCache 用法: defer m.observeCache("get", time.Now())
func (m *Metrics) observeCache(op string, start time.Time) {
	if m != nil {
		m.cacheOps.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
