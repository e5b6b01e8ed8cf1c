// Package mailer delivers share notifications.
package mailer

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/logging"
)

// ShareMail is one notification about a shared moment.
type ShareMail struct {
	From       string
	Recipients []string
	Title      string
	URL        string
}

type Mailer interface {
	SendShare(ctx context.Context, m ShareMail) error
}

// LogMailer writes the mail to the log instead of sending it.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	if log == nil {
		log = logging.Nop{}
	}
	return &LogMailer{log: log.With("module", "mailer")}
}

func (m *LogMailer) SendShare(ctx context.Context, mail ShareMail) error {
	m.log.Info(ctx, "share mail",
		"from", mail.From,
		"to", strings.Join(mail.Recipients, ","),
		"title", mail.Title,
		"url", mail.URL,
	)
	return nil
}
