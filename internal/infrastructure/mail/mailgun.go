package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

var ErrMailgunConfig = errors.New("mailgun domain, api key and sender are required")

type MailgunConfig struct {
	Domain string
	APIKey string
	// APIBase overrides the API endpoint, e.g. the EU region.
	APIBase string
	From    string
}

// Mailgun sends email through the Mailgun HTTP API.
type Mailgun struct {
	client *mg.MailgunImpl
	from   string
}

func NewMailgun(cfg MailgunConfig) (*Mailgun, error) {
	if cfg.Domain == "" || cfg.APIKey == "" || cfg.From == "" {
		return nil, ErrMailgunConfig
	}
	client := mg.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		client.SetAPIBase(cfg.APIBase)
	}
	return &Mailgun{client: client, from: cfg.From}, nil
}

func (m *Mailgun) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := m.client.NewMessage(m.from, subject, "", to)
	msg.SetHtml(htmlBody)

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
