package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/pricing"
)

// Lead sources
const (
	LeadSourceContactForm = "contact_form"
	LeadSourceCalculator  = "calculator"
	LeadSourceQuoteEmail  = "quote_email"
)

// Lead is a captured prospect: whoever filled the contact form or asked to
// receive a quote by email.
type Lead struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	Source    string
	CreatedAt time.Time
}

// QuoteRequest is a persisted quote configuration together with the
// breakdown the server computed for it. The breakdown is always recomputed
// from the catalog at intake time; client-supplied prices are never stored.
type QuoteRequest struct {
	ID              uuid.UUID
	LeadID          uuid.NullUUID
	Email           string
	PackID          string
	PackName        string
	Pages           int
	OptionIDs       []string
	OptionNames     []string
	Maintenance     string
	MaintenanceName string
	Breakdown       pricing.Calculation
	CreatedAt       time.Time
}

// CreateLeadParams carries validated input for lead creation.
type CreateLeadParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
	Source  string
}

// emailPattern is deliberately loose: it rejects obvious garbage without
// trying to police the full RFC grammar.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks required fields and normalizes whitespace in place.
func (p *CreateLeadParams) Validate() error {
	const op = "lead.validate"

	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Company = strings.TrimSpace(p.Company)
	p.Message = strings.TrimSpace(p.Message)

	if p.Name == "" {
		return Invalid(op, "Le nom est requis.")
	}
	if p.Email == "" {
		return Invalid(op, "L'adresse email est requise.")
	}
	if !ValidEmail(p.Email) {
		return Invalid(op, "Adresse email invalide.")
	}
	if len(p.Message) > 5000 {
		return Invalid(op, "Le message est trop long.")
	}
	if p.Source == "" {
		p.Source = LeadSourceContactForm
	}
	return nil
}

// CreateQuoteRequestParams carries input for persisting a quote request.
type CreateQuoteRequestParams struct {
	LeadID          uuid.NullUUID
	Email           string
	PackID          string
	PackName        string
	Pages           int
	OptionIDs       []string
	OptionNames     []string
	Maintenance     string
	MaintenanceName string
	Breakdown       pricing.Calculation
}

// Validate checks the minimal shape of a quote request. The pricing itself
// needs no validation here: the calculator already degrades unknown ids to
// zero amounts.
func (p *CreateQuoteRequestParams) Validate() error {
	const op = "quote_request.validate"

	p.Email = strings.TrimSpace(strings.ToLower(p.Email))

	if p.Email == "" {
		return Invalid(op, "L'adresse email est requise.")
	}
	if !ValidEmail(p.Email) {
		return Invalid(op, "Adresse email invalide.")
	}
	if p.PackID == "" {
		return Invalid(op, "Le pack est requis.")
	}
	return nil
}
