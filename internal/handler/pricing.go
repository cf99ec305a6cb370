package handler

import (
	"log/slog"
	"net/http"

	"github.com/loiredigital/site/internal/pricing"
)

// PricingHandler serves GET /api/pricing: the catalog the calculator UI
// renders.
type PricingHandler struct {
	catalog *pricing.Catalog
	logger  *slog.Logger
}

// NewPricingHandler creates a PricingHandler. A nil catalog falls back to
// the built-in one.
func NewPricingHandler(catalog *pricing.Catalog, logger *slog.Logger) *PricingHandler {
	if catalog == nil {
		catalog = pricing.Default
	}
	return &PricingHandler{catalog: catalog, logger: logger}
}

type pricingResponse struct {
	Packs             []pricing.Pack            `json:"packs"`
	Options           []pricing.Option          `json:"options"`
	MaintenancePlans  []pricing.MaintenancePlan `json:"maintenancePlans"`
	PricePerExtraPage int                       `json:"pricePerExtraPage"`
}

// Catalog handles GET /api/pricing.
func (h *PricingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: pricingResponse{
			Packs:             h.catalog.Packs,
			Options:           h.catalog.Options,
			MaintenancePlans:  h.catalog.MaintenancePlans,
			PricePerExtraPage: h.catalog.PricePerExtraPage,
		},
	})
}
