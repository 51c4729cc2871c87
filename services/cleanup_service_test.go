package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/libris-app/libris/errors"
	"github.com/libris-app/libris/internal/notify"
)

func TestCleanupRunDeletesAndNotifies(t *testing.T) {
	sessions := new(MockSessionRepository)
	notifier := &recordingNotifier{}
	svc := NewCleanupService(sessions, notifier)

	sessions.On("CleanupExpiredSessions", context.Background()).Return(int64(42), nil)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.SeverityInfo, notifier.sent[0].Severity)
	assert.Equal(t, "expired sessions removed", notifier.sent[0].Subject)
	assert.Contains(t, notifier.sent[0].Body, "42")
}

func TestCleanupRunNothingToDelete(t *testing.T) {
	sessions := new(MockSessionRepository)
	notifier := &recordingNotifier{}
	svc := NewCleanupService(sessions, notifier)

	sessions.On("CleanupExpiredSessions", context.Background()).Return(int64(0), nil)

	require.NoError(t, svc.Run(context.Background()))
	assert.Empty(t, notifier.sent, "an empty sweep sends no notification")
}

func TestCleanupRunFailureAlerts(t *testing.T) {
	sessions := new(MockSessionRepository)
	notifier := &recordingNotifier{}
	svc := NewCleanupService(sessions, notifier)

	sessions.On("CleanupExpiredSessions", context.Background()).
		Return(int64(0), errors.New("mongo down"))

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.SeverityAlert, notifier.sent[0].Severity)
	assert.Equal(t, "session cleanup failed", notifier.sent[0].Subject)
}

func TestCleanupStartNonPositiveInterval(t *testing.T) {
	sessions := new(MockSessionRepository)
	svc := NewCleanupService(sessions, &recordingNotifier{})

	// Must fall back to a sane interval instead of panicking in the
	// ticker; with the context already cancelled, Start returns at once.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Start(ctx, 0)
	svc.Start(ctx, -time.Hour)
}

func TestCleanupRunSurvivesNotifierFailure(t *testing.T) {
	sessions := new(MockSessionRepository)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := NewCleanupService(sessions, notifier)

	sessions.On("CleanupExpiredSessions", context.Background()).Return(int64(3), nil)

	// A broken notification channel must not fail the sweep itself.
	require.NoError(t, svc.Run(context.Background()))
}
