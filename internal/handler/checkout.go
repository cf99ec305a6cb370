package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/billing"
	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/metrics"
)

// quoteGetter is the repository slice the checkout handler needs.
type quoteGetter interface {
	GetQuoteRequest(ctx context.Context, id uuid.UUID) (domain.QuoteRequest, error)
}

// CheckoutHandler serves the deposit payment flow:
//
//   - POST /api/checkout       -> CreateSession
//   - POST /api/stripe-webhook -> Webhook
//
// When billing is nil (no Stripe key configured) CreateSession answers with
// an explicit unavailable message instead of failing, so development setups
// work without credentials.
type CheckoutHandler struct {
	repo           quoteGetter
	billing        billing.Service
	depositPercent int
	baseURL        string
	logger         *slog.Logger
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(repo quoteGetter, billingSvc billing.Service, depositPercent int, baseURL string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		repo:           repo,
		billing:        billingSvc,
		depositPercent: depositPercent,
		baseURL:        baseURL,
		logger:         logger,
	}
}

type checkoutRequestBody struct {
	QuoteRequestID string `json:"quoteRequestId"`
}

type checkoutResponseData struct {
	CheckoutURL  string `json:"checkoutUrl"`
	DepositEuros int    `json:"depositEuros"`
}

// CreateSession handles POST /api/checkout.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "handler.checkout"

	if h.billing == nil {
		metrics.CheckoutSessionsCreated.WithLabelValues("unavailable").Inc()
		ErrorResponse(w, r, h.logger,
			domain.Errorf(domain.EPAYMENT, op, "Le paiement en ligne n'est pas disponible pour le moment."))
		return
	}

	var body checkoutRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Requête invalide."))
		return
	}

	quoteID, err := uuid.Parse(body.QuoteRequestID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Identifiant de devis invalide."))
		return
	}

	quote, err := h.repo.GetQuoteRequest(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ErrorResponse(w, r, h.logger, domain.NotFound(op, "devis", body.QuoteRequestID))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to load quote request"))
		return
	}

	deposit := depositAmount(quote.Breakdown.TotalPrice, h.depositPercent)
	if deposit < 1 {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Ce devis ne permet pas de paiement d'acompte."))
		return
	}

	url, err := h.billing.CreateDepositCheckoutSession(billing.DepositParams{
		QuoteRequestID: quote.ID.String(),
		CustomerEmail:  quote.Email,
		Description:    fmt.Sprintf("Acompte %d%% - Création site internet", h.depositPercent),
		AmountEuros:    deposit,
		SuccessURL:     h.baseURL + "/merci?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      h.baseURL + "/devis",
	})
	if err != nil {
		metrics.CheckoutSessionsCreated.WithLabelValues("error").Inc()
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to create checkout session"))
		return
	}

	metrics.CheckoutSessionsCreated.WithLabelValues("created").Inc()
	h.logger.Info("checkout session created",
		"quote_request_id", quote.ID,
		"deposit_euros", deposit,
	)

	WriteJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: checkoutResponseData{
			CheckoutURL:  url,
			DepositEuros: deposit,
		},
	})
}

// Webhook handles POST /api/stripe-webhook.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		http.Error(w, "webhook not configured", http.StatusNotImplemented)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	event, err := h.billing.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.logger.Info("deposit payment completed",
			"event_id", event.ID,
			"quote_request_id", event.GetObjectValue("metadata", "quote_request_id"),
		)
	default:
		h.logger.Debug("ignoring stripe event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// depositAmount computes the deposit in whole euros, rounding to nearest.
func depositAmount(totalEuros, percent int) int {
	return (totalEuros*percent + 50) / 100
}
