package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/localnerve/paperdb/internal/config"
)

// Assignment describes a committed reviewer assignment.
type Assignment struct {
	ReviewID      uint64
	PaperID       uint64
	VersionNumber uint64
	Title         string
	ReviewerEmail string
	ReviewerName  string
}

// Notifier tells reviewers about new assignments. It runs after commit;
// a failure is logged and never undoes the assignment.
type Notifier interface {
	ReviewerAssigned(ctx context.Context, a Assignment) error
}

type noopNotifier struct{}

func (noopNotifier) ReviewerAssigned(context.Context, Assignment) error { return nil }

// MailNotifier sends assignment notices over SMTP.
type MailNotifier struct {
	cfg    config.MailConfig
	dialer *mail.Dialer
}

// DefaultMailTimeout applies when the mail settings carry no timeout.
const DefaultMailTimeout = 10 * time.Second

// NewMailNotifier builds a notifier from the mail settings.
func NewMailNotifier(cfg config.MailConfig) *MailNotifier {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	d.Timeout = cfg.Timeout
	if d.Timeout <= 0 {
		d.Timeout = DefaultMailTimeout
	}
	return &MailNotifier{cfg: cfg, dialer: d}
}

// Message renders the notice for one assignment.
func (n *MailNotifier) Message(a Assignment) *mail.Message {
	name := a.ReviewerName
	if name == "" {
		name = a.ReviewerEmail
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", a.ReviewerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Review requested: paper %d, version %d", a.PaperID, a.VersionNumber))
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Hello %s,</p><p>You have been asked to review <strong>%s</strong> (paper %d, version %d).</p><p>Review id: %d</p>",
		html.EscapeString(name), html.EscapeString(a.Title), a.PaperID, a.VersionNumber, a.ReviewID,
	))
	return m
}

// ReviewerAssigned sends the notice, giving up at the dialer timeout or the
// context deadline, whichever comes first.
func (n *MailNotifier) ReviewerAssigned(ctx context.Context, a Assignment) error {
	if a.ReviewerEmail == "" {
		return fmt.Errorf("reviewer of review %d has no email", a.ReviewID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d := *n.dialer
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		if remaining < d.Timeout {
			d.Timeout = remaining
		}
	}
	return d.DialAndSend(n.Message(a))
}
