package stripe

import (
	"fmt"
	"strings"
)

// Config for the Stripe checkout adapter
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	// SuccessURL phải chứa {CHECKOUT_SESSION_ID} để stripe-return lấy được session
	SuccessURL string
	CancelURL  string
}

// NewConfig builds the redirect URLs from the API public URL and the frontend URL
func NewConfig(secretKey, webhookSecret, currency, apiPublicURL, frontendURL string) *Config {
	if currency == "" {
		currency = "usd"
	}
	return &Config{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		Currency:      strings.ToLower(currency),
		SuccessURL:    strings.TrimSuffix(apiPublicURL, "/") + "/api/v1/order/stripe-return?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     strings.TrimSuffix(frontendURL, "/") + "/cart?cancelled=true",
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("stripe secret key is required")
	}
	if c.SuccessURL == "" || c.CancelURL == "" {
		return fmt.Errorf("stripe success and cancel URLs are required")
	}
	return nil
}
