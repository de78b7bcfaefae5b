package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// EmailSender delivers operator alert emails.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one alert addressed to one or more operators.
type EmailMessage struct {
	To       []string
	Subject  string
	Body     string
	HTML     string // optional
	Category string
	// Tags are attached as provider metadata (SendGrid custom args, SES
	// message tags) so alerts can be filtered by session.
	Tags map[string]string
}

var errNoRecipients = errors.New("notify: message has no recipients")

const defaultFromName = "Vigilante Honeypot"

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender returns nil without an API key.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid. Each recipient gets its own
// personalization so operators do not see each other's addresses.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	if len(msg.To) == 0 {
		return errNoRecipients
	}

	response, err := s.client.SendWithContext(ctx, buildSendGridMail(s.fromName, s.fromEmail, msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "recipients", len(msg.To))
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("alert email sent via sendgrid", "recipients", len(msg.To), "status", response.StatusCode)
	return nil
}

func buildSendGridMail(fromName, fromEmail string, msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(fromName, fromEmail))
	m.Subject = msg.Subject

	for _, to := range msg.To {
		p := mail.NewPersonalization()
		p.AddTos(mail.NewEmail("", to))
		m.AddPersonalizations(p)
	}

	// SendGrid requires text/plain ahead of text/html.
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	m.AddContent(mail.NewContent("text/plain", msg.Body), mail.NewContent("text/html", html))

	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	for _, k := range sortedKeys(msg.Tags) {
		m.SetCustomArg(k, msg.Tags[k])
	}
	return m
}

func sortedKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StubEmailSender logs alerts instead of sending them.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: alert not sent",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"category", msg.Category,
	)
	return nil
}
