package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Log writes emails to the application log instead of sending them.
// Only meant for local development.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(_ context.Context, to, subject, htmlBody string) error {
	l.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", htmlBody).
		Msg("email not sent, log mail driver")
	return nil
}
