package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/models"
)

// Mailer is the delivery transport: send a plain text message
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

type Config struct {
	// Templates to render, zero values are filled from DefaultTemplates
	Templates Templates

	// Operator notices are sent only if enabled and a recipient is set
	OperatorEnabled bool
	OperatorEmail   string
}

// Notifier renders email templates and hands them to the Mailer.
// Every send is best effort: callers decide whether a failure matters.
type Notifier struct {
	mailer    Mailer
	templates Templates

	operatorEnabled bool
	operatorEmail   string
}

func New(cfg Config, mailer Mailer) *Notifier {
	return &Notifier{
		mailer:          mailer,
		templates:       cfg.Templates.withDefaults(),
		operatorEnabled: cfg.OperatorEnabled,
		operatorEmail:   cfg.OperatorEmail,
	}
}

// SendVoteLink delivers the one-time link to the buyer
func (n *Notifier) SendVoteLink(ctx context.Context, to string, customerName string, orderID int64, link string, window time.Duration) error {
	if customerName == "" {
		customerName = to
	}

	repl := placeholders{
		"{customer_name}": customerName,
		"{order_id}":      strconv.FormatInt(orderID, 10),
		"{link}":          link,
		"{expiry_hours}":  strconv.FormatInt(int64(window.Hours()), 10),
	}

	subject := repl.render(n.templates.LinkSubject)
	body := repl.render(n.templates.LinkBody)

	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("error while sending vote link. Err: %w", err)
	}
	return nil
}

// SendConfirmation tells the voter the vote was recorded
func (n *Notifier) SendConfirmation(ctx context.Context, sub models.Submission) error {
	repl := placeholders{
		"{customer_name}": sub.Identity,
		"{platform}":      sub.PlatformName,
		"{order_id}":      strconv.FormatInt(sub.ExternalRef, 10),
	}

	subject := repl.render(n.templates.ConfirmSubject)
	body := repl.render(n.templates.ConfirmBody)

	if err := n.mailer.Send(ctx, sub.Identity, subject, body); err != nil {
		return fmt.Errorf("error while sending confirmation. Err: %w", err)
	}
	return nil
}

// SendOperatorNotice tells the operator about a new submission.
// No-op unless operator notifications are configured.
func (n *Notifier) SendOperatorNotice(ctx context.Context, sub models.Submission) error {
	if !n.operatorEnabled || n.operatorEmail == "" {
		return nil
	}

	repl := placeholders{
		"{customer_name}":   sub.Identity,
		"{customer_email}":  sub.Identity,
		"{platform}":        sub.PlatformName,
		"{order_id}":        strconv.FormatInt(sub.ExternalRef, 10),
		"{submission_date}": sub.CreatedAt.Format(time.RFC3339),
	}

	subject := repl.render(n.templates.OperatorSubject)
	body := repl.render(n.templates.OperatorBody)

	if err := n.mailer.Send(ctx, n.operatorEmail, subject, body); err != nil {
		return fmt.Errorf("error while sending operator notice. Err: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them.
// Default transport for dev and tests; production deployments plug in
// a real Mailer.
type LogMailer struct {
	Logger logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, to string, subject string, body string) error {
	m.Logger.Info("outgoing mail", "to", to, "subject", subject, "body", body)
	return nil
}
