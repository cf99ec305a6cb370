// Package service contains the business logic layer.
//
// This file implements the intake service: everything that happens when a
// prospect submits the contact form or asks to receive a quote by email.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/metrics"
	"github.com/loiredigital/site/internal/pricing"
	"github.com/loiredigital/site/internal/repository"
	"github.com/loiredigital/site/internal/worker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuoteSubmission is the full payload of a quote form submission. The
// configuration is the prospect's selection; any prices the client sent
// along are ignored and recomputed from the catalog.
type QuoteSubmission struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string

	Config pricing.Configuration

	// EmailCopy requests a styled copy of the quote by email. The
	// send-quote endpoint sets this; the plain contact intake does not.
	EmailCopy bool
}

// QuoteIntakeResult is what the handlers need to answer the client.
type QuoteIntakeResult struct {
	QuoteRequest domain.QuoteRequest
	Lead         *domain.Lead
}

// IntakeService defines the operations behind the public intake endpoints.
type IntakeService interface {
	// SubmitQuote validates a submission, recomputes its price breakdown,
	// persists the lead and quote request, and enqueues the notification
	// (and, when requested, quote email) jobs.
	// Returns domain.EINVALID for validation errors.
	SubmitQuote(ctx context.Context, sub QuoteSubmission) (*QuoteIntakeResult, error)
}

// Repository is the slice of repository.Queries the intake service needs.
// Narrow so tests can substitute a fake.
type Repository interface {
	CreateLead(ctx context.Context, params domain.CreateLeadParams) (domain.Lead, error)
	CreateQuoteRequest(ctx context.Context, params domain.CreateQuoteRequestParams) (domain.QuoteRequest, error)
	EnqueueJob(ctx context.Context, params repository.EnqueueJobParams) (repository.Job, error)
}

// =============================================================================
// Implementation
// =============================================================================

type intakeService struct {
	repo    Repository
	catalog *pricing.Catalog
	logger  *slog.Logger
}

// NewIntakeService creates a new IntakeService. A nil catalog falls back to
// the built-in one.
func NewIntakeService(repo Repository, catalog *pricing.Catalog, logger *slog.Logger) IntakeService {
	if catalog == nil {
		catalog = pricing.Default
	}
	return &intakeService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// SubmitQuote handles a quote form submission end to end.
func (s *intakeService) SubmitQuote(ctx context.Context, sub QuoteSubmission) (*QuoteIntakeResult, error) {
	const op = "intake.submit_quote"

	source := domain.LeadSourceCalculator
	if sub.EmailCopy {
		source = domain.LeadSourceQuoteEmail
	}

	leadParams := domain.CreateLeadParams{
		Name:    sub.Name,
		Email:   sub.Email,
		Phone:   sub.Phone,
		Company: sub.Company,
		Message: sub.Message,
		Source:  source,
	}
	// The quote-by-email form only asks for an address; fall back to it as
	// the lead name so the admin view never shows a blank row.
	if sub.EmailCopy && strings.TrimSpace(leadParams.Name) == "" {
		leadParams.Name = strings.TrimSpace(strings.ToLower(sub.Email))
	}
	if err := leadParams.Validate(); err != nil {
		return nil, err
	}

	// Price the configuration server-side. Unknown ids degrade to zero
	// amounts instead of failing, so a stale client catalog still produces
	// a storable request the team can follow up on.
	sub.Config.OptionIDs = normalizeOptionIDs(sub.Config.OptionIDs)
	calc := s.catalog.CalculateQuotePrice(sub.Config)
	metrics.QuotesCalculated.Inc()

	quoteParams := domain.CreateQuoteRequestParams{
		Email:     leadParams.Email,
		PackID:    sub.Config.PackID,
		Pages:     sub.Config.Pages,
		OptionIDs: sub.Config.OptionIDs,
		Breakdown: calc,
	}
	if pack, ok := s.catalog.Pack(sub.Config.PackID); ok {
		quoteParams.PackName = pack.Name
	}
	for _, id := range sub.Config.OptionIDs {
		name := id
		if opt, ok := s.catalog.Option(id); ok {
			name = opt.Name
		}
		quoteParams.OptionNames = append(quoteParams.OptionNames, name)
	}
	if sub.Config.Maintenance != "" && sub.Config.Maintenance != "none" {
		quoteParams.Maintenance = sub.Config.Maintenance
		if plan, ok := s.catalog.MaintenancePlan(sub.Config.Maintenance); ok {
			quoteParams.MaintenanceName = plan.Name
		}
	}
	if err := quoteParams.Validate(); err != nil {
		return nil, err
	}

	lead, err := s.repo.CreateLead(ctx, leadParams)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create lead")
	}
	metrics.LeadsCreated.WithLabelValues(lead.Source).Inc()

	quoteParams.LeadID = uuid.NullUUID{UUID: lead.ID, Valid: true}
	quote, err := s.repo.CreateQuoteRequest(ctx, quoteParams)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create quote request")
	}
	metrics.QuoteRequestsCreated.Inc()

	// Notification and email delivery run in the background so a slow SMTP
	// server never delays the HTTP response.
	if err := s.enqueueFollowUps(ctx, lead, quote, sub.EmailCopy); err != nil {
		// The quote request is already stored. Log and answer success
		// rather than making the prospect resubmit.
		s.logger.Error("failed to enqueue follow-up jobs",
			"op", op,
			"quote_request_id", quote.ID,
			"error", err,
		)
	}

	s.logger.Info("quote request received",
		"quote_request_id", quote.ID,
		"lead_id", lead.ID,
		"pack_id", quote.PackID,
		"total_price", quote.Breakdown.TotalPrice,
		"email_copy", sub.EmailCopy,
	)

	return &QuoteIntakeResult{QuoteRequest: quote, Lead: &lead}, nil
}

func (s *intakeService) enqueueFollowUps(ctx context.Context, lead domain.Lead, quote domain.QuoteRequest, emailCopy bool) error {
	if _, err := worker.EnqueueNotifyLead(ctx, s.repo, lead.ID, quote.ID); err != nil {
		return err
	}
	if emailCopy {
		if _, err := worker.EnqueueSendQuoteEmail(ctx, s.repo, quote.ID, worker.WithPriority(worker.PriorityHigh)); err != nil {
			return err
		}
	}
	return nil
}

// normalizeOptionIDs trims blanks out of a client-sent option list.
// Duplicates are kept: the calculator charges them twice on purpose, and
// hiding that here would make the stored request disagree with the price.
func normalizeOptionIDs(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out
}
