// Package billing provides Stripe integration for collecting project
// deposits.
package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Service defines the interface for billing operations.
type Service interface {
	// CreateDepositCheckoutSession creates a one-time payment Checkout
	// session for a project deposit. amount is in whole euros. Returns the
	// checkout URL to redirect the prospect to.
	CreateDepositCheckoutSession(params DepositParams) (string, error)

	// VerifyWebhookSignature verifies a Stripe webhook signature and
	// returns the event.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)
}

// DepositParams describes the deposit to collect.
type DepositParams struct {
	QuoteRequestID string // Stored quote request the deposit belongs to
	CustomerEmail  string
	Description    string // Line item label shown at checkout
	AmountEuros    int    // Deposit amount in whole euros
	SuccessURL     string
	CancelURL      string
}

// stripeService is the concrete implementation of Service.
type stripeService struct {
	webhookSecret string
}

// NewStripeService creates a new Stripe billing service. The secretKey
// authenticates API calls; the webhookSecret verifies incoming webhooks.
func NewStripeService(secretKey, webhookSecret string) Service {
	stripe.Key = secretKey
	return &stripeService{webhookSecret: webhookSecret}
}

func (s *stripeService) CreateDepositCheckoutSession(params DepositParams) (string, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(params.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyEUR)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
					// Stripe amounts are in cents.
					UnitAmount: stripe.Int64(int64(params.AmountEuros) * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata: map[string]string{
			"quote_request_id": params.QuoteRequestID,
		},
	}

	sess, err := checkoutsession.New(sessionParams)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}
	return event, nil
}
