package email

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/pricing"
)

func testService(t *testing.T) *SMTPEmailService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewSMTPEmailService(SMTPConfig{Host: "localhost", Port: 1025}, "admin@example.fr", logger)
	if err != nil {
		t.Fatalf("NewSMTPEmailService: %v", err)
	}
	return svc
}

func testQuote() domain.QuoteRequest {
	return domain.QuoteRequest{
		Email:           "marie@example.fr",
		PackID:          "essentiel",
		PackName:        "Essentiel",
		Pages:           7,
		OptionIDs:       []string{"seo", "blog"},
		OptionNames:     []string{"Référencement renforcé", "Blog"},
		Maintenance:     "premium",
		MaintenanceName: "Premium",
		Breakdown: pricing.Calculation{
			BasePrice:        800,
			ExtraPagesPrice:  300,
			OptionsPrice:     600,
			TotalPrice:       1700,
			MaintenancePrice: 59,
		},
	}
}

func TestRenderQuoteTemplate(t *testing.T) {
	svc := testService(t)
	quote := testQuote()

	html, err := svc.renderTemplate("quote.html", map[string]interface{}{
		"PackName":        quote.PackName,
		"Pages":           quote.Pages,
		"OptionNames":     quote.OptionNames,
		"MaintenanceName": quote.MaintenanceName,
		"Breakdown":       quote.Breakdown,
		"Year":            2026,
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}

	for _, want := range []string{
		"Pack Essentiel",
		"7 pages",
		"Référencement renforcé",
		euros(1700),
		"Maintenance Premium",
		"facturée séparément",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered quote missing %q", want)
		}
	}
}

func TestRenderQuoteTemplateWithoutMaintenance(t *testing.T) {
	svc := testService(t)
	quote := testQuote()
	quote.MaintenanceName = ""
	quote.Breakdown.MaintenancePrice = 0

	html, err := svc.renderTemplate("quote.html", map[string]interface{}{
		"PackName":        quote.PackName,
		"Pages":           quote.Pages,
		"OptionNames":     quote.OptionNames,
		"MaintenanceName": quote.MaintenanceName,
		"Breakdown":       quote.Breakdown,
		"Year":            2026,
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}
	if strings.Contains(html, "Maintenance") {
		t.Error("maintenance block rendered for a quote without maintenance")
	}
}

func TestRenderLeadNotification(t *testing.T) {
	svc := testService(t)
	lead := domain.Lead{
		Name:   "Marie Dupont",
		Email:  "marie@example.fr",
		Phone:  "06 12 34 56 78",
		Source: domain.LeadSourceQuoteEmail,
	}

	html, err := svc.renderTemplate("lead_notification.html", map[string]interface{}{
		"Lead":  lead,
		"Quote": testQuote(),
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}

	for _, want := range []string{
		"Marie Dupont",
		"marie@example.fr",
		"06 12 34 56 78",
		"Référencement renforcé, Blog",
		euros(1700),
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered notification missing %q", want)
		}
	}
}

func TestQuoteTextBody(t *testing.T) {
	svc := testService(t)
	text := svc.quoteTextBody(testQuote())

	for _, want := range []string{
		"Pack Essentiel (7 pages)",
		"Total création : " + euros(1700),
		"Maintenance Premium",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestBuildMessageMultipart(t *testing.T) {
	svc := testService(t)
	msg := string(svc.buildMessage(Email{
		To:       "marie@example.fr",
		Subject:  "Votre devis Loire Digital",
		HTMLBody: "<p>html</p>",
		TextBody: "texte",
	}))

	for _, want := range []string{
		"From: Loire Digital <contact@loiredigital.fr>",
		"To: marie@example.fr",
		"Subject: Votre devis Loire Digital",
		"multipart/alternative",
		"text/plain; charset=utf-8",
		"text/html; charset=utf-8",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}
