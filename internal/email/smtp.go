package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// frPrinter formats numbers with French grouping for prices in emails.
var frPrinter = message.NewPrinter(language.French)

// =============================================================================
// SMTP Email Service Implementation
// =============================================================================

// SMTPEmailService sends emails via SMTP. Works with Mailhog in development
// (no auth) and any standard authenticated relay in production. Templates
// are embedded in the binary and rendered with html/template.
type SMTPEmailService struct {
	config     SMTPConfig
	adminEmail string
	templates  *template.Template
	logger     *slog.Logger
}

// NewSMTPEmailService creates a new SMTP-based email service. adminEmail is
// the inbox receiving lead notifications.
func NewSMTPEmailService(config SMTPConfig, adminEmail string, logger *slog.Logger) (*SMTPEmailService, error) {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	templates, err := template.New("email").Funcs(emailTemplateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPEmailService{
		config:     config,
		adminEmail: adminEmail,
		templates:  templates,
		logger:     logger,
	}, nil
}

// =============================================================================
// EmailService Interface Implementation
// =============================================================================

// SendQuoteEmail sends the quote recap to the prospect. The rendered HTML is
// returned so the caller can archive it next to the stored quote request.
func (s *SMTPEmailService) SendQuoteEmail(ctx context.Context, quote domain.QuoteRequest) (string, error) {
	data := map[string]interface{}{
		"PackName":        displayName(quote.PackName, quote.PackID),
		"Pages":           quote.Pages,
		"OptionNames":     quote.OptionNames,
		"MaintenanceName": quote.MaintenanceName,
		"Breakdown":       quote.Breakdown,
		"Year":            time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("quote.html", data)
	if err != nil {
		return "", fmt.Errorf("failed to render quote email template: %w", err)
	}

	textBody := s.quoteTextBody(quote)

	err = s.send(ctx, "quote", Email{
		To:       quote.Email,
		Subject:  "Votre devis Loire Digital",
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return "", err
	}
	return htmlBody, nil
}

// SendLeadNotification alerts the admin inbox about a new lead.
func (s *SMTPEmailService) SendLeadNotification(ctx context.Context, lead domain.Lead, quote domain.QuoteRequest) error {
	data := map[string]interface{}{
		"Lead":  lead,
		"Quote": quote,
	}

	htmlBody, err := s.renderTemplate("lead_notification.html", data)
	if err != nil {
		return fmt.Errorf("failed to render lead notification template: %w", err)
	}

	textBody := fmt.Sprintf(`Nouvelle demande de devis

Nom : %s
Email : %s
Pack : %s
Total création : %s

Voir le détail dans l'interface d'administration.
`, lead.Name, lead.Email, displayName(quote.PackName, quote.PackID), euros(quote.Breakdown.TotalPrice))

	return s.send(ctx, "lead_notification", Email{
		To:       s.adminEmail,
		Subject:  fmt.Sprintf("Nouveau lead : %s", lead.Name),
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// =============================================================================
// Internal Methods
// =============================================================================

// quoteTextBody is the plain text fallback for the quote email.
func (s *SMTPEmailService) quoteTextBody(quote domain.QuoteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour,\n\nVoici le récapitulatif de votre estimation :\n\n")
	fmt.Fprintf(&b, "Pack %s", displayName(quote.PackName, quote.PackID))
	if quote.Pages > 0 {
		fmt.Fprintf(&b, " (%d pages)", quote.Pages)
	}
	fmt.Fprintf(&b, " : %s\n", euros(quote.Breakdown.BasePrice))
	if quote.Breakdown.ExtraPagesPrice > 0 {
		fmt.Fprintf(&b, "Pages supplémentaires : %s\n", euros(quote.Breakdown.ExtraPagesPrice))
	}
	if len(quote.OptionNames) > 0 {
		fmt.Fprintf(&b, "Options (%s) : %s\n", strings.Join(quote.OptionNames, ", "), euros(quote.Breakdown.OptionsPrice))
	}
	fmt.Fprintf(&b, "Total création : %s\n", euros(quote.Breakdown.TotalPrice))
	if quote.MaintenanceName != "" {
		fmt.Fprintf(&b, "Maintenance %s : %s / mois, facturée séparément\n", quote.MaintenanceName, euros(quote.Breakdown.MaintenancePrice))
	}
	fmt.Fprintf(&b, "\nCette estimation est valable 30 jours.\n\nL'équipe Loire Digital\n")
	return b.String()
}

// send delivers an email via SMTP.
func (s *SMTPEmailService) send(ctx context.Context, templateName string, email Email) error {
	msg := s.buildMessage(email)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Auth only when credentials are configured; Mailhog needs none.
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(templateName, "error").Inc()
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.EmailsSent.WithLabelValues(templateName, "sent").Inc()
	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

// buildMessage constructs the raw multipart message with headers.
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "===============LOIREDIGITAL_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// renderTemplate renders an email template with the given data.
func (s *SMTPEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// =============================================================================
// Template Functions
// =============================================================================

// euros formats a whole-euro amount with French digit grouping.
func euros(n int) string {
	return frPrinter.Sprintf("%d €", n)
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// emailTemplateFuncs returns template functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"euros": euros,
		"join":  strings.Join,
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

// =============================================================================
// Compile-time interface check
// =============================================================================

var _ EmailService = (*SMTPEmailService)(nil)
