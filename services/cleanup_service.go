package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/domain"
	apperrors "github.com/libris-app/libris/errors"
	"github.com/libris-app/libris/internal/metrics"
	"github.com/libris-app/libris/internal/notify"
)

// CleanupService is the scheduled sweep that physically deletes sessions
// past their expiry. Sessions past ExpiresAt are already logically dead;
// the sweep reclaims storage and reports what it removed.
type CleanupService struct {
	sessions domain.SessionRepository
	notifier notify.Notifier
}

// NewCleanupService creates a CleanupService.
func NewCleanupService(sessions domain.SessionRepository, notifier notify.Notifier) *CleanupService {
	return &CleanupService{sessions: sessions, notifier: notifier}
}

// Run executes one sweep. Failures are metered, alerted, and returned as
// an internal error; the job never retries within a run — the next
// scheduled sweep is the retry.
func (s *CleanupService) Run(ctx context.Context) error {
	start := time.Now()

	count, err := s.sessions.CleanupExpiredSessions(ctx)
	if err != nil {
		metrics.SessionCleanupFailureTotal.Inc()
		if notifyErr := s.notifier.Notify(ctx, notify.SeverityAlert,
			"session cleanup failed", err.Error()); notifyErr != nil {
			log.Error().Err(notifyErr).Msg("cleanup: failed to deliver failure alert")
		}
		return apperrors.NewInternal("session cleanup failed", err)
	}

	elapsed := time.Since(start)
	metrics.SessionCleanupDuration.Observe(elapsed.Seconds())
	metrics.SessionCleanupDeletedTotal.Add(float64(count))
	log.Info().Int64("deleted", count).Dur("elapsed", elapsed).Msg("session cleanup completed")

	if count > 0 {
		body := fmt.Sprintf("deleted %d expired sessions in %s", count, elapsed)
		if notifyErr := s.notifier.Notify(ctx, notify.SeverityInfo, "expired sessions removed", body); notifyErr != nil {
			log.Error().Err(notifyErr).Msg("cleanup: failed to deliver summary notification")
		}
	}
	return nil
}

// defaultCleanupInterval is used when Start is handed a non-positive
// interval, which time.NewTicker would otherwise panic on.
const defaultCleanupInterval = 24 * time.Hour

// Start runs the sweep on a fixed interval until ctx is cancelled. A
// failed sweep waits for the next tick.
func (s *CleanupService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Dur("fallback", defaultCleanupInterval).
			Msg("non-positive cleanup interval, using fallback")
		interval = defaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("session cleanup scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session cleanup scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Run(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled session cleanup failed")
			}
		}
	}
}
