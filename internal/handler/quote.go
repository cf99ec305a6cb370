package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/pricing"
	"github.com/loiredigital/site/internal/service"
)

// QuoteHandler serves the two public intake endpoints:
//
//   - POST /api/devis       -> SubmitDevis (contact form with configuration)
//   - POST /api/send-quote  -> SendQuote (quote recap by email)
type QuoteHandler struct {
	intake service.IntakeService
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(intake service.IntakeService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{intake: intake, logger: logger}
}

// quoteRequestBody is the JSON body both intake endpoints accept. Any
// client-sent prices are ignored; the breakdown is recomputed server-side.
type quoteRequestBody struct {
	Name    string                `json:"name"`
	Email   string                `json:"email"`
	Phone   string                `json:"phone"`
	Company string                `json:"company"`
	Message string                `json:"message"`
	Config  pricing.Configuration `json:"config"`
}

// quoteResponseData is the payload answered on success.
type quoteResponseData struct {
	QuoteRequestID string              `json:"quoteRequestId"`
	Breakdown      pricing.Calculation `json:"breakdown"`
}

// SubmitDevis handles POST /api/devis.
func (h *QuoteHandler) SubmitDevis(w http.ResponseWriter, r *http.Request) {
	h.handleSubmission(w, r, false,
		"Merci ! Votre demande a bien été envoyée. Nous revenons vers vous sous 24h.")
}

// SendQuote handles POST /api/send-quote.
func (h *QuoteHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	h.handleSubmission(w, r, true,
		"Votre devis vous a été envoyé par email.")
}

func (h *QuoteHandler) handleSubmission(w http.ResponseWriter, r *http.Request, emailCopy bool, successMessage string) {
	const op = "handler.quote_submission"

	var body quoteRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Requête invalide."))
		return
	}

	result, err := h.intake.SubmitQuote(r.Context(), service.QuoteSubmission{
		Name:      body.Name,
		Email:     body.Email,
		Phone:     body.Phone,
		Company:   body.Company,
		Message:   body.Message,
		Config:    body.Config,
		EmailCopy: emailCopy,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Message: successMessage,
		Data: quoteResponseData{
			QuoteRequestID: result.QuoteRequest.ID.String(),
			Breakdown:      result.QuoteRequest.Breakdown,
		},
	})
}
