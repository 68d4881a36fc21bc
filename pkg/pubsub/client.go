// Package pubsub wraps the Pub/Sub v2 client for the outbox publisher
// and the notification consumer.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

// NewClient connects to Pub/Sub and verifies the configured
// subscriptions exist up front, so a typo'd subscription name fails
// the boot instead of a silent no-message worker.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errors.New("gcp project id is required")
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: psClient, projectID: gcp.ProjectID, cfg: cfg}
	if err := c.checkSubscriptions(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func (c *Client) checkSubscriptions(ctx context.Context) error {
	name := strings.TrimSpace(c.cfg.NotificationSubscription)
	if name == "" {
		return errors.New("pubsub subscription name is required")
	}

	full := c.resourceName("subscriptions", name)
	if full == "" {
		return fmt.Errorf("subscription %q not configured", name)
	}
	_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx,
		&pubsubpb.GetSubscriptionRequest{Subscription: full})
	if err != nil {
		// v2 surfaces gRPC errors; NotFound means the subscription is absent.
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("subscription %q does not exist", name)
		}
		return fmt.Errorf("checking subscription %q: %w", name, err)
	}
	return nil
}

// NotificationSubscription is the subscriber the worker consumes order
// events from.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	full := c.resourceName("subscriptions", c.cfg.NotificationSubscription)
	if full == "" {
		return nil
	}
	return c.client.Subscriber(full)
}

// OrdersPublisher is where the outbox publisher sends order events.
func (c *Client) OrdersPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	full := c.resourceName("topics", c.cfg.OrdersTopic)
	if full == "" {
		return nil
	}
	return c.client.Publisher(full)
}

// Ping re-verifies the configured subscriptions for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("pubsub client not initialized")
	}
	return c.checkSubscriptions(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// resourceName accepts either a bare ID or a full resource name and
// returns the full `projects/<p>/<kind>/<id>` form.
func (c *Client) resourceName(kind, name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", p, kind, n)
}
