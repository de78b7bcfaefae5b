package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/vigilante/internal/callback"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// Alerter emails operators the first time a session is flagged as a scam.
// It is a callback sink.
type Alerter struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewAlerter returns nil when there is no sender or no recipient.
// recipients is a comma-separated list.
func NewAlerter(email EmailSender, recipients string, logger *logging.Logger) *Alerter {
	var to []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if email == nil || len(to) == 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Alerter{email: email, recipients: to, logger: logger}
}

// Name implements callback.Sink.
func (a *Alerter) Name() string { return "email" }

// Deliver implements callback.Sink. Only the first detection of a session
// produces an email.
func (a *Alerter) Deliver(ctx context.Context, r callback.Report) error {
	if !r.FirstDetection {
		return nil
	}

	msg := EmailMessage{
		To:       a.recipients,
		Subject:  alertSubject(r),
		Body:     alertText(r),
		HTML:     alertHTML(r),
		Category: "scam-alert",
		Tags: map[string]string{
			"session_id": r.Payload.SessionID,
			"persona":    r.PersonaID,
		},
	}
	if err := a.email.Send(ctx, msg); err != nil {
		a.logger.Error("notify: failed to send scam alert", "error", err, "session_id", r.Payload.SessionID)
		return fmt.Errorf("notify: scam alert: %w", err)
	}
	a.logger.Info("notify: scam alert sent", "recipients", len(a.recipients), "session_id", r.Payload.SessionID)
	return nil
}

func alertSubject(r callback.Report) string {
	return fmt.Sprintf("Scam detected in session %s (confidence %.2f)", r.Payload.SessionID, r.Confidence)
}

func intelLines(r callback.Report) [][2]string {
	var lines [][2]string
	for _, c := range intel.Categories {
		values := r.Intel.Get(c)
		if len(values) == 0 {
			continue
		}
		lines = append(lines, [2]string{string(c), strings.Join(values, ", ")})
	}
	return lines
}

func alertText(r callback.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\nPersona: %s\nMessages: %d\n%s\n",
		r.Payload.SessionID, r.PersonaID, r.Payload.TotalMessagesExchanged, r.Payload.AgentNotes)
	lines := intelLines(r)
	if len(lines) == 0 {
		sb.WriteString("\nNo intelligence captured yet.\n")
		return sb.String()
	}
	sb.WriteString("\nIntelligence so far:\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "  %s: %s\n", l[0], l[1])
	}
	return sb.String()
}

func alertHTML(r callback.Report) string {
	var rows strings.Builder
	for _, l := range intelLines(r) {
		fmt.Fprintf(&rows, `<tr><td style="padding: 6px;"><strong>%s</strong></td><td style="padding: 6px;">%s</td></tr>`,
			html.EscapeString(l[0]), html.EscapeString(l[1]))
	}
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #dc2626;">Scam detected</h2>
<p>Session <strong>%s</strong> (persona %s, %d messages)</p>
<p>%s</p>
<table style="border-collapse: collapse;">%s</table>
</div>`,
		html.EscapeString(r.Payload.SessionID), html.EscapeString(r.PersonaID),
		r.Payload.TotalMessagesExchanged, html.EscapeString(r.Payload.AgentNotes), rows.String())
}
