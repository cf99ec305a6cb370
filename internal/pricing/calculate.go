package pricing

// Configuration is a quote as the visitor has configured it. It is built
// from untrusted UI state and may reference unknown ids or carry
// nonsensical page counts; the calculator degrades instead of failing.
type Configuration struct {
	PackID      string   `json:"packId"`
	Pages       int      `json:"pages"`
	OptionIDs   []string `json:"optionIds"`
	Maintenance string   `json:"maintenance"` // plan id or empty
}

// Calculation is the derived price breakdown for a Configuration.
// Invariant: TotalPrice == BasePrice + ExtraPagesPrice + OptionsPrice.
// MaintenancePrice is a monthly recurring amount and is never part of
// TotalPrice.
type Calculation struct {
	BasePrice        int `json:"basePrice"`
	ExtraPagesPrice  int `json:"extraPagesPrice"`
	OptionsPrice     int `json:"optionsPrice"`
	TotalPrice       int `json:"totalPrice"`
	MaintenancePrice int `json:"maintenancePrice"`
}

// CalculateQuotePrice computes the breakdown for cfg against this catalog.
//
// The function is pure and never fails: it runs on every selection change
// in the calculator UI, ahead of any validation, so malformed input must
// produce a usable (possibly all-zero) result rather than an error.
//
//   - An unknown pack id yields the zero Calculation.
//   - Page counts at or below the pack's included count contribute nothing;
//     negative counts clamp the same way, never producing negative pricing.
//   - Unknown option ids contribute zero. Duplicate ids each count again;
//     de-duplication is the caller's policy, not the calculator's.
//   - An unknown or empty maintenance id yields MaintenancePrice 0.
func (c *Catalog) CalculateQuotePrice(cfg Configuration) Calculation {
	pack, ok := c.Pack(cfg.PackID)
	if !ok {
		return Calculation{}
	}

	basePrice := pack.BasePrice

	extraPages := cfg.Pages - pack.PagesIncluded
	if extraPages < 0 {
		extraPages = 0
	}
	extraPagesPrice := extraPages * c.PricePerExtraPage

	optionsPrice := 0
	for _, id := range cfg.OptionIDs {
		if opt, ok := c.Option(id); ok {
			optionsPrice += opt.Price
		}
	}

	maintenancePrice := 0
	if plan, ok := c.MaintenancePlan(cfg.Maintenance); ok {
		maintenancePrice = plan.PricePerMonth
	}

	return Calculation{
		BasePrice:        basePrice,
		ExtraPagesPrice:  extraPagesPrice,
		OptionsPrice:     optionsPrice,
		TotalPrice:       basePrice + extraPagesPrice + optionsPrice,
		MaintenancePrice: maintenancePrice,
	}
}

// CalculateQuotePrice computes the breakdown against the default catalog.
func CalculateQuotePrice(cfg Configuration) Calculation {
	return Default.CalculateQuotePrice(cfg)
}
