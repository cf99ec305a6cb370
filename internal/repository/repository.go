// Package repository provides database access for leads, quote requests
// and the background job queue.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/loiredigital/site/internal/domain"
	"github.com/loiredigital/site/internal/pricing"
)

// DBTX abstracts *sql.DB and *sql.Tx so queries run inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Queries exposes all database operations.
type Queries struct {
	db DBTX
}

// New creates a Queries over the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// =============================================================================
// Leads
// =============================================================================

const createLead = `
INSERT INTO leads (id, name, email, phone, company, message, source)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, email, phone, company, message, source, created_at
`

func (q *Queries) CreateLead(ctx context.Context, params domain.CreateLeadParams) (domain.Lead, error) {
	var lead domain.Lead
	err := q.db.QueryRowContext(ctx, createLead,
		uuid.New(),
		params.Name,
		params.Email,
		params.Phone,
		params.Company,
		params.Message,
		params.Source,
	).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Message,
		&lead.Source,
		&lead.CreatedAt,
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

const getLead = `
SELECT id, name, email, phone, company, message, source, created_at
FROM leads WHERE id = $1
`

func (q *Queries) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := q.db.QueryRowContext(ctx, getLead, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Message,
		&lead.Source,
		&lead.CreatedAt,
	)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// =============================================================================
// Quote requests
// =============================================================================

const createQuoteRequest = `
INSERT INTO quote_requests (
    id, lead_id, email, pack_id, pack_name, pages,
    option_ids, option_names, maintenance, maintenance_name,
    base_price, extra_pages_price, options_price, total_price, maintenance_price,
    breakdown
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id, created_at
`

func (q *Queries) CreateQuoteRequest(ctx context.Context, params domain.CreateQuoteRequestParams) (domain.QuoteRequest, error) {
	breakdownJSON, err := json.Marshal(params.Breakdown)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("marshal breakdown: %w", err)
	}

	req := domain.QuoteRequest{
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
	}

	err = q.db.QueryRowContext(ctx, createQuoteRequest,
		uuid.New(),
		params.LeadID,
		params.Email,
		params.PackID,
		params.PackName,
		params.Pages,
		pq.Array(params.OptionIDs),
		pq.Array(params.OptionNames),
		params.Maintenance,
		params.MaintenanceName,
		params.Breakdown.BasePrice,
		params.Breakdown.ExtraPagesPrice,
		params.Breakdown.OptionsPrice,
		params.Breakdown.TotalPrice,
		params.Breakdown.MaintenancePrice,
		pqtype.NullRawMessage{RawMessage: breakdownJSON, Valid: true},
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("create quote request: %w", err)
	}
	return req, nil
}

const getQuoteRequest = `
SELECT id, lead_id, email, pack_id, pack_name, pages,
       option_ids, option_names, maintenance, maintenance_name,
       base_price, extra_pages_price, options_price, total_price, maintenance_price,
       created_at
FROM quote_requests WHERE id = $1
`

func (q *Queries) GetQuoteRequest(ctx context.Context, id uuid.UUID) (domain.QuoteRequest, error) {
	var req domain.QuoteRequest
	var optionIDs, optionNames pq.StringArray
	var b pricing.Calculation

	err := q.db.QueryRowContext(ctx, getQuoteRequest, id).Scan(
		&req.ID,
		&req.LeadID,
		&req.Email,
		&req.PackID,
		&req.PackName,
		&req.Pages,
		&optionIDs,
		&optionNames,
		&req.Maintenance,
		&req.MaintenanceName,
		&b.BasePrice,
		&b.ExtraPagesPrice,
		&b.OptionsPrice,
		&b.TotalPrice,
		&b.MaintenancePrice,
		&req.CreatedAt,
	)
	if err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("get quote request: %w", err)
	}

	req.OptionIDs = optionIDs
	req.OptionNames = optionNames
	req.Breakdown = b
	return req, nil
}
