// Package mail delivers transactional email through Mailgun, SMTP or the
// application log.
package mail

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/pkg/config"
)

// New returns the dispatcher selected by cfg.Driver.
func New(cfg config.MailConfig, logger zerolog.Logger) (ports.EmailDispatcher, error) {
	switch cfg.Driver {
	case "mailgun":
		return NewMailgun(MailgunConfig{
			Domain:  cfg.MailgunDomain,
			APIKey:  cfg.MailgunAPIKey,
			APIBase: cfg.MailgunAPIBase,
			From:    cfg.From,
		})
	case "smtp":
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	case "log":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}
