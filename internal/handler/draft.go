package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/quote"
)

// DraftHandler exposes the cookie-backed quote draft:
//
//   - GET    /api/quote-draft -> Load
//   - PUT    /api/quote-draft -> Save
//   - DELETE /api/quote-draft -> Clear
//
// The browser owns the draft bytes; the server only applies the expiry and
// corruption rules while the cookie passes through.
type DraftHandler struct {
	secure bool // set Secure on draft cookies (production)
	logger *slog.Logger
}

// NewDraftHandler creates a DraftHandler.
func NewDraftHandler(secure bool, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{secure: secure, logger: logger}
}

// draftResponse is the GET payload. Draft is null when nothing is stored.
type draftResponse struct {
	Draft *quote.Draft `json:"draft"`
}

// Load handles GET /api/quote-draft.
func (h *DraftHandler) Load(w http.ResponseWriter, r *http.Request) {
	store := quote.NewCookieStore(w, r, h.secure)

	d, ok := store.Load()
	if !ok {
		WriteJSON(w, http.StatusOK, APIResponse{Success: true, Data: draftResponse{Draft: nil}})
		return
	}
	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Data: draftResponse{Draft: &d}})
}

// Save handles PUT /api/quote-draft.
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	const op = "handler.draft_save"

	var d quote.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Requête invalide."))
		return
	}

	store := quote.NewCookieStore(w, r, h.secure)
	store.Save(d)

	WriteJSON(w, http.StatusOK, APIResponse{Success: true})
}

// Clear handles DELETE /api/quote-draft.
func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store := quote.NewCookieStore(w, r, h.secure)
	store.Clear()

	WriteJSON(w, http.StatusOK, APIResponse{Success: true})
}
