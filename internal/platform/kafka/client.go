// Package kafka builds the franz-go client used for change notifications and
// makes sure the notification topic exists.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"orgatlas/internal/platform/config"
)

// Client owns a producer client and its admin view.
type Client struct {
	*kgo.Client
	admin *kadm.Client
}

// New connects to the brokers and verifies reachability.
func New(ctx context.Context, cfg config.KafkaConfig, topic string) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Client{Client: cl, admin: kadm.NewClient(cl)}, nil
}

// EnsureTopic creates topic when it does not exist yet.
func (c *Client) EnsureTopic(ctx context.Context, topic string, partitions int32, replication int16) error {
	if partitions <= 0 {
		partitions = 1
	}
	if replication <= 0 {
		replication = 1
	}
	resp, err := c.admin.CreateTopic(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Health pings the cluster.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx)
}
