// Package pubsub implements the run-event publisher on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"go.opentelemetry.io/otel"

	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
)

// Publisher wraps a Pub/Sub publisher client bound to one topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// New creates a Publisher for the provided topic publisher.
func New(publisher *pubsub.Publisher) *Publisher {
	return &Publisher{publisher: publisher}
}

// NewFromConfig builds the Pub/Sub client and binds it to the configured
// run-event topic.
func NewFromConfig(ctx context.Context, cfg config.PubSubConfig) (*Publisher, error) {
	if cfg.ProjectID == "" || cfg.TopicName == "" {
		return nil, fmt.Errorf("pubsub.project_id and pubsub.topic_name are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
	}, nil
}

// Publish marshals the payload to JSON and publishes it to the topic.
// Run events additionally carry source and status attributes so
// subscribers can filter without unmarshaling.
func (p *Publisher) Publish(ctx context.Context, _ string, payload any) (string, error) {
	if p.publisher == nil {
		return "", fmt.Errorf("pubsub publisher is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	msg := &pubsub.Message{Data: data}
	msg.Attributes = make(map[string]string)
	if ev, ok := payload.(etl.RunEvent); ok {
		msg.Attributes["source"] = ev.Source
		msg.Attributes["status"] = string(ev.Status)
	}
	otel.GetTextMapPropagator().Inject(ctx, &pubsubCarrier{attrs: msg.Attributes})

	result := p.publisher.Publish(ctx, msg)
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// pubsubCarrier implements propagation.TextMapCarrier for Pub/Sub attributes.
type pubsubCarrier struct {
	attrs map[string]string
}

func (c *pubsubCarrier) Get(key string) string {
	return c.attrs[key]
}

func (c *pubsubCarrier) Set(key, value string) {
	c.attrs[key] = value
}

func (c *pubsubCarrier) Keys() []string {
	keys := make([]string, 0, len(c.attrs))
	for k := range c.attrs {
		keys = append(keys, k)
	}
	return keys
}
