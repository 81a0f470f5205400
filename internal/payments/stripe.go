package payments

import (
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Client wraps the Stripe payment intent API used when issuing invoices.
// When no secret key is configured the client is disabled and CreateIntent
// returns an error the caller treats as best-effort.
type Client struct {
	currency string
	enabled  bool
}

func NewClient(secretKey, currency string) *Client {
	c := &Client{
		currency: currency,
		enabled:  secretKey != "",
	}
	if c.enabled {
		stripe.Key = secretKey
	}
	return c
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// CreateIntent creates a payment intent for an invoice amount expressed in
// major currency units and returns the intent id for reconciliation.
func (c *Client) CreateIntent(amount float64, invoiceNumber string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("stripe not configured")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("invoice_number", invoiceNumber)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ID, nil
}
