// Package stripe initializes the Stripe SDK with environment checks so
// a live key can never ship with a test config or vice versa.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)

// Client bundles the SDK client with the webhook signing secret and
// the environment it was validated against.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
}

func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	signingSecret := strings.TrimSpace(cfg.WebhookSecret)
	switch {
	case apiKey == "":
		return nil, errors.New("stripe api key is required")
	case signingSecret == "":
		return nil, errors.New("stripe webhook secret is required")
	}
	if err := checkKeyMatchesEnv(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}
	return &Client{api: api, environment: env, signingSecret: signingSecret}, nil
}

// API returns the SDK client. Nil-safe so wiring code can pass a nil
// *Client through without guards.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret is the webhook endpoint secret used to verify
// Stripe-Signature headers.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	if env != testEnv && env != liveEnv {
		return "", errInvalidStripeEnv
	}
	return env, nil
}

func checkKeyMatchesEnv(env, key string) error {
	prefixes := map[string][]string{
		testEnv: {"sk_test", "rk_test"},
		liveEnv: {"sk_live", "rk_live"},
	}[env]
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return nil
		}
	}
	return fmt.Errorf("stripe environment %q requires a matching secret key (%s)", env, strings.Join(prefixes, "/"))
}
