package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loiredigital/site/internal/email"
	"github.com/loiredigital/site/internal/worker"
)

// NotifyLeadHandler alerts the admin inbox about a freshly captured lead.
type NotifyLeadHandler struct {
	repo   quoteReader
	emails email.EmailService
	logger *slog.Logger
}

// NewNotifyLeadHandler creates the handler.
func NewNotifyLeadHandler(repo quoteReader, emails email.EmailService, logger *slog.Logger) *NotifyLeadHandler {
	return &NotifyLeadHandler{
		repo:   repo,
		emails: emails,
		logger: logger,
	}
}

// Type implements worker.JobHandler.
func (h *NotifyLeadHandler) Type() string {
	return worker.JobTypeNotifyLead
}

// Handle implements worker.JobHandler.
func (h *NotifyLeadHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.NotifyLeadPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("unmarshal payload: %w", err))
	}

	lead, err := h.repo.GetLead(ctx, p.LeadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("lead %s not found", p.LeadID))
		}
		return fmt.Errorf("load lead: %w", err)
	}

	quote, err := h.repo.GetQuoteRequest(ctx, p.QuoteRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.NewPermanentError(fmt.Errorf("quote request %s not found", p.QuoteRequestID))
		}
		return fmt.Errorf("load quote request: %w", err)
	}

	if err := h.emails.SendLeadNotification(ctx, lead, quote); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}

	h.logger.Debug("lead notification sent", "lead_id", lead.ID)
	return nil
}

var _ worker.JobHandler = (*NotifyLeadHandler)(nil)
