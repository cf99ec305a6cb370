package domain

import (
	"strings"
	"testing"
)

func TestCreateLeadParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateLeadParams
		wantErr bool
	}{
		{
			"valid",
			CreateLeadParams{Name: "Marie Dupont", Email: "marie@example.fr"},
			false,
		},
		{
			"missing name",
			CreateLeadParams{Email: "marie@example.fr"},
			true,
		},
		{
			"whitespace name",
			CreateLeadParams{Name: "   ", Email: "marie@example.fr"},
			true,
		},
		{
			"missing email",
			CreateLeadParams{Name: "Marie"},
			true,
		},
		{
			"malformed email",
			CreateLeadParams{Name: "Marie", Email: "not-an-email"},
			true,
		},
		{
			"email with spaces",
			CreateLeadParams{Name: "Marie", Email: "ma rie@example.fr"},
			true,
		},
		{
			"oversized message",
			CreateLeadParams{Name: "Marie", Email: "marie@example.fr", Message: strings.Repeat("x", 5001)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && ErrorCode(err) != EINVALID {
				t.Errorf("expected %s code, got %s", EINVALID, ErrorCode(err))
			}
		})
	}
}

func TestCreateLeadParamsValidateNormalizes(t *testing.T) {
	p := CreateLeadParams{
		Name:  "  Marie Dupont  ",
		Email: "  MARIE@Example.FR ",
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Marie Dupont" {
		t.Errorf("name not trimmed: %q", p.Name)
	}
	if p.Email != "marie@example.fr" {
		t.Errorf("email not normalized: %q", p.Email)
	}
	if p.Source != LeadSourceContactForm {
		t.Errorf("expected default source, got %q", p.Source)
	}
}

func TestCreateQuoteRequestParamsValidate(t *testing.T) {
	valid := CreateQuoteRequestParams{Email: "marie@example.fr", PackID: "essentiel"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missingPack := CreateQuoteRequestParams{Email: "marie@example.fr"}
	if err := missingPack.Validate(); err == nil {
		t.Error("expected error for missing pack")
	}

	badEmail := CreateQuoteRequestParams{Email: "nope", PackID: "essentiel"}
	if err := badEmail.Validate(); err == nil {
		t.Error("expected error for bad email")
	}
}

func TestErrorHelpers(t *testing.T) {
	err := Invalid("lead.validate", "Le nom est requis.")
	if ErrorCode(err) != EINVALID {
		t.Errorf("code = %s, want %s", ErrorCode(err), EINVALID)
	}
	if ErrorMessage(err) != "Le nom est requis." {
		t.Errorf("unexpected message: %s", ErrorMessage(err))
	}
	if ErrorOp(err) != "lead.validate" {
		t.Errorf("unexpected op: %s", ErrorOp(err))
	}

	// Internal errors hide their details from clients.
	internal := Internal(Invalid("x", "secret detail"), "op", "boom")
	if msg := ErrorMessage(internal); strings.Contains(msg, "secret") || strings.Contains(msg, "boom") {
		t.Errorf("internal message leaked details: %s", msg)
	}
}
