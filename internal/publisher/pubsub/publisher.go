// Package pubsub publishes pipeline events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventAttribute carries the pipeline topic on every message.
const EventAttribute = "event"

// Publisher routes events to Pub/Sub topics. With a fixed topic configured
// every event goes there; otherwise the event name is the topic ID.
type Publisher struct {
	client  *pubsub.Client
	topicID string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// New dials Pub/Sub for projectID.
func New(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*Publisher, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id is required")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	return NewWithClient(client, topicID), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *pubsub.Client, topicID string) *Publisher {
	return &Publisher{client: client, topicID: topicID, topics: make(map[string]*pubsub.Topic)}
}

// Publish marshals the payload to JSON and waits for the server ID.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) (string, error) {
	if p.client == nil {
		return "", errors.New("pubsub publisher is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	msg := &pubsub.Message{Data: data, Attributes: map[string]string{EventAttribute: event}}
	result := p.topic(event).Publish(ctx, msg)
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", event, err)
	}
	return id, nil
}

func (p *Publisher) topic(event string) *pubsub.Topic {
	id := p.topicID
	if id == "" {
		id = event
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.topics[id]
	if !ok {
		t = p.client.Topic(id)
		p.topics[id] = t
	}
	return t
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.mu.Lock()
	for _, t := range p.topics {
		t.Stop()
	}
	p.topics = make(map[string]*pubsub.Topic)
	p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
