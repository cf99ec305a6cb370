// Package jobs contains the background job handlers executed by the worker.
package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/email"
	"github.com/loiredigital/site/internal/storage"
	"github.com/loiredigital/site/internal/worker"
)

// quoteReader is the repository slice the job handlers need.
type quoteReader interface {
	GetQuoteRequest(ctx context.Context, id uuid.UUID) (domain.QuoteRequest, error)
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// SendQuoteEmailHandler delivers the styled quote email to the prospect and
// archives the rendered HTML next to the stored quote request.
type SendQuoteEmailHandler struct {
	repo    quoteReader
	emails  email.EmailService
	archive storage.Storage
	logger  *slog.Logger
}

// NewSendQuoteEmailHandler creates the handler. archive may be nil to skip
// archiving.
func NewSendQuoteEmailHandler(repo quoteReader, emails email.EmailService, archive storage.Storage, logger *slog.Logger) *SendQuoteEmailHandler {
	return &SendQuoteEmailHandler{
		repo:    repo,
		emails:  emails,
		archive: archive,
		logger:  logger,
	}
}

// Type implements worker.JobHandler.
func (h *SendQuoteEmailHandler) Type() string {
	return worker.JobTypeSendQuoteEmail
}

// Handle implements worker.JobHandler.
func (h *SendQuoteEmailHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.SendQuoteEmailPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("unmarshal payload: %w", err))
	}

	quote, err := h.repo.GetQuoteRequest(ctx, p.QuoteRequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row is gone; retrying will never succeed.
			return worker.NewPermanentError(fmt.Errorf("quote request %s not found", p.QuoteRequestID))
		}
		return fmt.Errorf("load quote request: %w", err)
	}

	html, err := h.emails.SendQuoteEmail(ctx, quote)
	if err != nil {
		return fmt.Errorf("send quote email: %w", err)
	}

	// Archiving is best effort: the email already went out, so failing the
	// job here would resend it on retry.
	if h.archive != nil {
		key := storage.QuoteArchiveKey(quote.ID)
		err := h.archive.Put(ctx, key, strings.NewReader(html), storage.PutOptions{
			ContentType: "text/html; charset=utf-8",
			Overwrite:   true,
		})
		if err != nil {
			h.logger.Warn("failed to archive quote email",
				"quote_request_id", quote.ID,
				"key", key,
				"error", err,
			)
		}
	}

	return nil
}

var _ worker.JobHandler = (*SendQuoteEmailHandler)(nil)
