// Package notify delivers account emails (welcome, password reset,
// password changed) off the request path.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/worker"
)

type Message struct {
	Kind    string
	To      string
	Subject string
	HTML    string
}

type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// LogNotifier writes messages to the log instead of sending them. Used when
// no SMTP server is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(_ context.Context, m Message) error {
	n.Logger.Info("notification (not sent, no smtp configured)",
		slog.String("kind", m.Kind),
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
	)
	return nil
}

// Dispatcher queues messages on the worker pool. Delivery failures are
// logged and counted, never returned to the caller.
type Dispatcher struct {
	n       Notifier
	pool    *worker.Pool
	log     *slog.Logger
	timeout time.Duration
}

func NewDispatcher(n Notifier, pool *worker.Pool, log *slog.Logger) *Dispatcher {
	return &Dispatcher{n: n, pool: pool, log: log, timeout: 30 * time.Second}
}

func (d *Dispatcher) Dispatch(m Message) {
	ok := d.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.n.Send(ctx, m); err != nil {
			metrics.NotificationsTotal.WithLabelValues(m.Kind, "failed").Inc()
			d.log.Error("notification failed", slog.String("kind", m.Kind), slog.String("to", m.To), slog.Any("err", err))
			return
		}
		metrics.NotificationsTotal.WithLabelValues(m.Kind, "sent").Inc()
	})
	if !ok {
		metrics.NotificationsTotal.WithLabelValues(m.Kind, "dropped").Inc()
	}
}

const (
	KindWelcome         = "welcome"
	KindPasswordReset   = "password_reset"
	KindPasswordChanged = "password_changed"
)

func layout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>%s</h2>
    %s
  </div>
</body>
</html>`, html.EscapeString(title), body)
}

func Welcome(to, name string) Message {
	return Message{
		Kind:    KindWelcome,
		To:      to,
		Subject: "Welcome to the Q&A forum",
		HTML: layout("Welcome, "+name+"!",
			`<p>Your account is ready. Ask your first question or help someone with an answer.</p>`),
	}
}

func PasswordReset(to, link string, expires time.Time) Message {
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Reset your password",
		HTML: layout("Password reset", fmt.Sprintf(
			`<p>Someone asked to reset the password for this account. If it was you, follow the link below.</p>
    <p><a href="%s">Reset password</a></p>
    <p>The link expires %s. If you did not ask for this, ignore this email.</p>`,
			html.EscapeString(link), humanize.Time(expires))),
	}
}

func PasswordChanged(to string, at time.Time) Message {
	return Message{
		Kind:    KindPasswordChanged,
		To:      to,
		Subject: "Your password was changed",
		HTML: layout("Password changed", fmt.Sprintf(
			`<p>The password for this account was changed on %s UTC.</p>
    <p>If this was not you, reset your password immediately.</p>`,
			at.UTC().Format("2006-01-02 15:04"))),
	}
}
