// Package pricing holds the catalog of packs, options and maintenance plans
// sold by Loire Digital, plus the pure price calculator built on top of it.
//
// The catalog is the single source of truth for every price the application
// quotes. Handlers, emails and persisted records all derive their amounts
// from here; a price hard-coded anywhere else is a defect.
package pricing

// Pack is a named bundle of a base price and an included page count.
type Pack struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	BasePrice     int      `json:"basePrice"`
	PagesIncluded int      `json:"pagesIncluded"`
	Features      []string `json:"features"`
	Popular       bool     `json:"popular,omitempty"`
}

// Option is an add-on with a fixed one-time price, independent of the pack.
type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

// MaintenancePlan is a recurring monthly service tier. Its price is reported
// separately and is never part of the one-time total.
type MaintenancePlan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PricePerMonth int      `json:"pricePerMonth"`
	Features      []string `json:"features"`
}

// Catalog groups the three reference collections and the per-extra-page
// price. It is immutable after construction; lookups are linear scans,
// which is fine at single-digit catalog sizes.
type Catalog struct {
	Packs             []Pack
	Options           []Option
	MaintenancePlans  []MaintenancePlan
	PricePerExtraPage int
}

// Pack returns the pack with the given id, or ok=false.
func (c *Catalog) Pack(id string) (Pack, bool) {
	for _, p := range c.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return Pack{}, false
}

// Option returns the option with the given id, or ok=false.
func (c *Catalog) Option(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// MaintenancePlan returns the plan with the given id, or ok=false.
func (c *Catalog) MaintenancePlan(id string) (MaintenancePlan, bool) {
	for _, m := range c.MaintenancePlans {
		if m.ID == id {
			return m, true
		}
	}
	return MaintenancePlan{}, false
}

// PricePerExtraPage is the cost of each page beyond a pack's included count.
const PricePerExtraPage = 100

// Default is the production catalog. Prices are whole euros.
var Default = &Catalog{
	PricePerExtraPage: PricePerExtraPage,
	Packs: []Pack{
		{
			ID:            "decouverte",
			Name:          "Découverte",
			BasePrice:     599,
			PagesIncluded: 3,
			Features: []string{
				"Design moderne et responsive",
				"3 pages incluses",
				"Formulaire de contact",
				"Optimisation mobile",
				"Hébergement 1ère année offerte",
			},
		},
		{
			ID:            "essentiel",
			Name:          "Essentiel",
			BasePrice:     999,
			PagesIncluded: 5,
			Popular:       true,
			Features: []string{
				"Tout du pack Découverte",
				"5 pages incluses",
				"SEO de base",
				"Intégration Google Maps",
				"Galerie photos (20 images)",
				"Hébergement 1ère année offerte",
			},
		},
		{
			ID:            "complet",
			Name:          "Complet",
			BasePrice:     1499,
			PagesIncluded: 8,
			Features: []string{
				"Tout du pack Essentiel",
				"8 pages incluses",
				"Blog intégré",
				"SEO avancé",
				"Galerie photos illimitée",
				"Formulaires avancés",
				"Hébergement 1ère année offerte",
			},
		},
	},
	Options: []Option{
		{
			ID:          "blog",
			Name:        "Blog",
			Price:       200,
			Description: "Blog avec système de gestion de contenus",
		},
		{
			ID:          "gallery",
			Name:        "Galerie photo avancée",
			Price:       150,
			Description: "Galerie photos avec lightbox et catégories",
		},
		{
			ID:          "seo",
			Name:        "SEO local avancé",
			Price:       250,
			Description: "Optimisation SEO complète + Google Business",
		},
		{
			ID:          "booking",
			Name:        "Système de réservation",
			Price:       400,
			Description: "Calendrier de réservation en ligne",
		},
		{
			ID:          "ecommerce-basic",
			Name:        "E-commerce basique",
			Price:       600,
			Description: "Boutique en ligne (max 20 produits)",
		},
	},
	MaintenancePlans: []MaintenancePlan{
		{
			ID:            "basic",
			Name:          "Maintenance basique",
			PricePerMonth: 29,
			Features: []string{
				"Mises à jour de sécurité",
				"Sauvegardes hebdomadaires",
				"Support par email",
			},
		},
		{
			ID:            "premium",
			Name:          "Maintenance premium",
			PricePerMonth: 59,
			Features: []string{
				"Tout de la maintenance basique",
				"Sauvegardes quotidiennes",
				"Support prioritaire",
				"2h de modifications/mois incluses",
				"Monitoring 24/7",
			},
		},
	},
}

// GetPackDetails looks up a pack in the default catalog.
func GetPackDetails(id string) (Pack, bool) {
	return Default.Pack(id)
}

// GetOptionDetails looks up an option in the default catalog.
func GetOptionDetails(id string) (Option, bool) {
	return Default.Option(id)
}

// GetMaintenancePlanDetails looks up a maintenance plan in the default catalog.
func GetMaintenancePlanDetails(id string) (MaintenancePlan, bool) {
	return Default.MaintenancePlan(id)
}
