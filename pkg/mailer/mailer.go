package mailer

import (
	"context"
	"errors"
)

// Mailer sends prepared messages through a Sender.
type Mailer struct {
	sender Sender
	config Config
}

// New creates a new Mailer with the given sender.
func New(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender: sender,
		config: cfg,
	}
}

// Send checks that the message has a recipient, a subject and HTML content,
// then delivers it. Defaults from Config fill a missing subject and reply-to.
// The caller's Email is not modified.
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if email == nil || len(email.To) == 0 {
		return ErrNoRecipient
	}

	msg := *email
	if msg.Subject == "" {
		msg.Subject = m.config.FallbackSubject
	}
	if msg.ReplyTo == "" {
		msg.ReplyTo = m.config.DefaultReplyTo
	}

	if msg.Subject == "" {
		return ErrNoSubject
	}
	if msg.HTML == "" {
		return ErrNoContent
	}

	if err := m.sender.Send(ctx, &msg); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}
