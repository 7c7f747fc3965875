// Package notify delivers password recovery links by email.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

const recoverySubject = "Password reset"

// Sender delivers a plain-text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through an authenticated SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender creates a sender that logs in as user on host:port.
func NewSMTPSender(host string, port int, user, password string) (*SMTPSender, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: user}, nil
}

// Send delivers one message.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Notifier builds recovery emails and hands them to a Sender.
type Notifier struct {
	sender   Sender
	linkBase string
	timeout  time.Duration
}

// NewNotifier creates a Notifier whose links point at linkBase.
func NewNotifier(sender Sender, linkBase string) *Notifier {
	return &Notifier{sender: sender, linkBase: linkBase, timeout: 30 * time.Second}
}

// ResetLink returns the link embedded in the recovery email for token.
func (n *Notifier) ResetLink(token string) string {
	u, err := url.Parse(n.linkBase)
	if err != nil {
		return n.linkBase + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// SendRecoveryEmail mails the reset link to email. Failures are logged and
// never returned.
func (n *Notifier) SendRecoveryEmail(ctx context.Context, email, token string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body := fmt.Sprintf("Hello, click the following link to reset your password: %s", n.ResetLink(token))
	if err := n.sender.Send(ctx, email, recoverySubject, body); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to send recovery email")
		return
	}
	log.Info().Str("email", email).Msg("Recovery email sent")
}
