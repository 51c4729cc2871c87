// Package metrics holds the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_logins_success_total",
		Help: "Total number of successful logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_logins_failure_total",
		Help: "Total number of failed logins.",
	})
	TokensRefreshedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_tokens_refreshed_total",
		Help: "Total number of token pair rotations.",
	})
	SessionsRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_sessions_revoked_total",
		Help: "Total number of sessions revoked, including defensive revocations.",
	})
	CacheHitTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_cache_hits_total",
		Help: "Total number of cache-aside hits.",
	})
	CacheMissTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_cache_misses_total",
		Help: "Total number of cache-aside misses.",
	})
	SessionCleanupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "libris_session_cleanup_duration_seconds",
		Help:    "Duration of expired-session cleanup sweeps.",
		Buckets: prometheus.DefBuckets,
	})
	SessionCleanupDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_session_cleanup_deleted_total",
		Help: "Total number of expired sessions deleted by the cleanup job.",
	})
	SessionCleanupFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "libris_session_cleanup_failures_total",
		Help: "Total number of failed cleanup sweeps.",
	})
)

// NewActiveSessionsGauge builds the active-session gauge. The value is
// computed on every scrape by the supplied count callback, so the gauge
// always reflects the store rather than drifting with missed increments
// and decrements from upsert replacements, revocations, or sweeps.
func NewActiveSessionsGauge(count func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "libris_active_sessions",
		Help: "Current number of non-revoked, non-expired user sessions.",
	}, count)
}

// Register registers all application collectors with reg. It should be
// called once at startup.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}
	collectors := []prometheus.Collector{
		LoginSuccessTotal,
		LoginFailureTotal,
		TokensRefreshedTotal,
		SessionsRevokedTotal,
		CacheHitTotal,
		CacheMissTotal,
		SessionCleanupDuration,
		SessionCleanupDeletedTotal,
		SessionCleanupFailureTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register Prometheus collector")
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
}
