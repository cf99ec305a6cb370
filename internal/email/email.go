// Package email sends the site's transactional email.
//
// An EmailService interface fronts the SMTP implementation so jobs and
// tests can swap in fakes. SMTP covers both Mailhog in development and the
// production relay.
package email

import (
	"context"

	"github.com/loiredigital/site/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// EmailService defines the transactional emails the site sends.
type EmailService interface {
	// SendQuoteEmail sends the styled quote recap to the prospect and
	// returns the rendered HTML body so callers can archive it.
	SendQuoteEmail(ctx context.Context, quote domain.QuoteRequest) (string, error)

	// SendLeadNotification alerts the admin inbox about a new lead and its
	// quote request.
	SendLeadNotification(ctx context.Context, lead domain.Lead, quote domain.QuoteRequest) error
}

// =============================================================================
// Email Data Types
// =============================================================================

// Email represents a single email message.
type Email struct {
	To       string // Recipient email address
	Subject  string // Email subject line
	HTMLBody string // HTML content of the email
	TextBody string // Plain text fallback content
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname ("localhost" for Mailhog)
	Port     int    // SMTP server port (1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

// =============================================================================
// Common Constants
// =============================================================================

const (
	// DefaultFromEmail is the default sender for transactional emails.
	DefaultFromEmail = "contact@loiredigital.fr"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Loire Digital"
)
