package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/pricing"
	"github.com/loiredigital/site/internal/repository"
	"github.com/loiredigital/site/internal/worker"
)

type fakeRepo struct {
	leads         []domain.CreateLeadParams
	quoteRequests []domain.CreateQuoteRequestParams
	jobs          []repository.EnqueueJobParams

	leadErr  error
	quoteErr error
	jobErr   error
}

func (f *fakeRepo) CreateLead(_ context.Context, params domain.CreateLeadParams) (domain.Lead, error) {
	if f.leadErr != nil {
		return domain.Lead{}, f.leadErr
	}
	f.leads = append(f.leads, params)
	return domain.Lead{
		ID:     uuid.New(),
		Name:   params.Name,
		Email:  params.Email,
		Source: params.Source,
	}, nil
}

func (f *fakeRepo) CreateQuoteRequest(_ context.Context, params domain.CreateQuoteRequestParams) (domain.QuoteRequest, error) {
	if f.quoteErr != nil {
		return domain.QuoteRequest{}, f.quoteErr
	}
	f.quoteRequests = append(f.quoteRequests, params)
	return domain.QuoteRequest{
		ID:              uuid.New(),
		LeadID:          params.LeadID,
		Email:           params.Email,
		PackID:          params.PackID,
		PackName:        params.PackName,
		Pages:           params.Pages,
		OptionIDs:       params.OptionIDs,
		OptionNames:     params.OptionNames,
		Maintenance:     params.Maintenance,
		MaintenanceName: params.MaintenanceName,
		Breakdown:       params.Breakdown,
	}, nil
}

func (f *fakeRepo) EnqueueJob(_ context.Context, params repository.EnqueueJobParams) (repository.Job, error) {
	if f.jobErr != nil {
		return repository.Job{}, f.jobErr
	}
	f.jobs = append(f.jobs, params)
	return repository.Job{ID: uuid.New(), JobType: params.JobType}, nil
}

func (f *fakeRepo) jobTypes() []string {
	types := make([]string, 0, len(f.jobs))
	for _, j := range f.jobs {
		types = append(types, j.JobType)
	}
	return types
}

var testCatalog = &pricing.Catalog{
	PricePerExtraPage: 100,
	Packs: []pricing.Pack{
		{ID: "essentiel", Name: "Essentiel", BasePrice: 800, PagesIncluded: 4},
	},
	Options: []pricing.Option{
		{ID: "seo", Name: "SEO renforcé", Price: 300},
		{ID: "blog", Name: "Blog", Price: 300},
	},
	MaintenancePlans: []pricing.MaintenancePlan{
		{ID: "premium", Name: "Premium", PricePerMonth: 59},
	},
}

func newIntake(repo *fakeRepo) IntakeService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIntakeService(repo, testCatalog, logger)
}

func submission() QuoteSubmission {
	return QuoteSubmission{
		Name:  "Marie Dupont",
		Email: "marie@example.fr",
		Config: pricing.Configuration{
			PackID:      "essentiel",
			Pages:       7,
			OptionIDs:   []string{"seo", "blog"},
			Maintenance: "premium",
		},
	}
}

func TestSubmitQuote(t *testing.T) {
	repo := &fakeRepo{}
	svc := newIntake(repo)

	result, err := svc.SubmitQuote(context.Background(), submission())
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	// Breakdown recomputed from the catalog: 800 + 3x100 + 600, premium 59.
	b := result.QuoteRequest.Breakdown
	if b.BasePrice != 800 || b.ExtraPagesPrice != 300 || b.OptionsPrice != 600 {
		t.Errorf("breakdown = %+v", b)
	}
	if b.TotalPrice != 1700 {
		t.Errorf("total = %d, want 1700", b.TotalPrice)
	}
	if b.MaintenancePrice != 59 {
		t.Errorf("maintenance = %d, want 59", b.MaintenancePrice)
	}

	if len(repo.leads) != 1 {
		t.Fatalf("leads created = %d", len(repo.leads))
	}
	if repo.leads[0].Source != domain.LeadSourceCalculator {
		t.Errorf("lead source = %q", repo.leads[0].Source)
	}

	if len(repo.quoteRequests) != 1 {
		t.Fatalf("quote requests created = %d", len(repo.quoteRequests))
	}
	qr := repo.quoteRequests[0]
	if !qr.LeadID.Valid {
		t.Error("quote request not linked to lead")
	}
	if qr.PackName != "Essentiel" {
		t.Errorf("pack name = %q", qr.PackName)
	}
	if len(qr.OptionNames) != 2 || qr.OptionNames[0] != "SEO renforcé" {
		t.Errorf("option names = %v", qr.OptionNames)
	}
	if qr.MaintenanceName != "Premium" {
		t.Errorf("maintenance name = %q", qr.MaintenanceName)
	}

	// Without an email copy only the admin notification is queued.
	if got := repo.jobTypes(); len(got) != 1 || got[0] != worker.JobTypeNotifyLead {
		t.Errorf("jobs = %v", got)
	}
}

func TestSubmitQuoteWithEmailCopy(t *testing.T) {
	repo := &fakeRepo{}
	svc := newIntake(repo)

	sub := submission()
	sub.EmailCopy = true
	if _, err := svc.SubmitQuote(context.Background(), sub); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	if repo.leads[0].Source != domain.LeadSourceQuoteEmail {
		t.Errorf("lead source = %q", repo.leads[0].Source)
	}
	got := repo.jobTypes()
	if len(got) != 2 || got[0] != worker.JobTypeNotifyLead || got[1] != worker.JobTypeSendQuoteEmail {
		t.Errorf("jobs = %v", got)
	}
}

func TestSubmitQuoteEmailOnlyForm(t *testing.T) {
	repo := &fakeRepo{}
	svc := newIntake(repo)

	sub := QuoteSubmission{
		Email:     " Marie@Example.FR ",
		Config:    pricing.Configuration{PackID: "essentiel", Pages: 4},
		EmailCopy: true,
	}
	if _, err := svc.SubmitQuote(context.Background(), sub); err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	// The address doubles as the lead name when the form only asked for it.
	if repo.leads[0].Name != "marie@example.fr" {
		t.Errorf("lead name = %q", repo.leads[0].Name)
	}
}

func TestSubmitQuoteValidation(t *testing.T) {
	svc := newIntake(&fakeRepo{})

	tests := []struct {
		name string
		sub  QuoteSubmission
	}{
		{"missing email", QuoteSubmission{Name: "Marie", Config: pricing.Configuration{PackID: "essentiel"}}},
		{"bad email", QuoteSubmission{Name: "Marie", Email: "nope", Config: pricing.Configuration{PackID: "essentiel"}}},
		{"missing name on contact form", QuoteSubmission{Email: "marie@example.fr", Config: pricing.Configuration{PackID: "essentiel"}}},
		{"missing pack", QuoteSubmission{Name: "Marie", Email: "marie@example.fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitQuote(context.Background(), tt.sub)
			if domain.ErrorCode(err) != domain.EINVALID {
				t.Errorf("error = %v, want EINVALID", err)
			}
		})
	}
}

func TestSubmitQuoteUnknownIDsDegrade(t *testing.T) {
	repo := &fakeRepo{}
	svc := newIntake(repo)

	sub := QuoteSubmission{
		Name:  "Marie",
		Email: "marie@example.fr",
		Config: pricing.Configuration{
			PackID:    "mystery-pack",
			Pages:     12,
			OptionIDs: []string{"seo", "hologram"},
		},
	}
	result, err := svc.SubmitQuote(context.Background(), sub)
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}

	// Unknown pack zeroes the whole breakdown; the request is still stored.
	if result.QuoteRequest.Breakdown != (pricing.Calculation{}) {
		t.Errorf("breakdown = %+v, want all zero", result.QuoteRequest.Breakdown)
	}
	qr := repo.quoteRequests[0]
	if qr.PackName != "" {
		t.Errorf("pack name = %q, want empty for unknown pack", qr.PackName)
	}
	// Unknown option ids keep their raw id as the display name.
	if len(qr.OptionNames) != 2 || qr.OptionNames[1] != "hologram" {
		t.Errorf("option names = %v", qr.OptionNames)
	}
}

func TestSubmitQuoteRepositoryFailure(t *testing.T) {
	repo := &fakeRepo{leadErr: errors.New("db down")}
	svc := newIntake(repo)

	_, err := svc.SubmitQuote(context.Background(), submission())
	if domain.ErrorCode(err) != domain.EINTERNAL {
		t.Errorf("error = %v, want EINTERNAL", err)
	}
}

func TestSubmitQuoteEnqueueFailureStillSucceeds(t *testing.T) {
	repo := &fakeRepo{jobErr: errors.New("queue down")}
	svc := newIntake(repo)

	result, err := svc.SubmitQuote(context.Background(), submission())
	if err != nil {
		t.Fatalf("SubmitQuote: %v", err)
	}
	if result == nil || result.QuoteRequest.Email == "" {
		t.Error("stored quote request not returned")
	}
}
