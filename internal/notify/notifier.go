// Package notify defines the notification channel contract used by
// background jobs to reach administrators.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityAlert Severity = "alert"
)

// Notifier delivers a message to an admin channel. Implementations are
// injected; jobs never construct their own channel.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, subject, body string) error
}

// LogNotifier writes notifications to the application log. It is the
// default channel when no external backend is configured.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, severity Severity, subject, body string) error {
	event := log.Info()
	if severity == SeverityAlert {
		event = log.Error()
	}
	event.Str("subject", subject).Str("severity", string(severity)).Msg(body)
	return nil
}

var _ Notifier = LogNotifier{}
