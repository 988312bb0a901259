package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ninepros_server/internal/utils"
)

// Client sends chat requests to the provider chosen per call.
type Client struct {
	registry        *Registry
	retryDelay      time.Duration
	completeTimeout time.Duration
}

// NewClient creates a Client. completeTimeout bounds each non-streaming
// attempt; zero means no limit. Streams are bounded only by the caller's
// context.
func NewClient(registry *Registry, completeTimeout time.Duration) *Client {
	return &Client{
		registry:        registry,
		retryDelay:      2 * time.Second,
		completeTimeout: completeTimeout,
	}
}

// Complete sends a non-streaming request and returns the assistant text.
// A transient failure is retried once.
func (c *Client) Complete(ctx context.Context, providerID string, req ChatRequest) (string, error) {
	p, err := c.registry.Get(providerID)
	if err != nil {
		return "", err
	}

	content, err := c.complete(ctx, p, req)
	if err != nil && utils.ShouldRetry(err) {
		log.Printf("%s completion failed, retrying once after delay... Error: %v", p.ID(), err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryDelay):
		}
		content, err = c.complete(ctx, p, req)
	}
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.ID(), err)
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, p Provider, req ChatRequest) (string, error) {
	if c.completeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.completeTimeout)
		defer cancel()
	}
	return p.Complete(ctx, req)
}

// Stream starts a streaming request. The caller must Close the decoder.
func (c *Client) Stream(ctx context.Context, providerID string, req ChatRequest) (*Decoder, error) {
	p, err := c.registry.Get(providerID)
	if err != nil {
		return nil, err
	}
	dec, err := p.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s stream failed: %w", p.ID(), err)
	}
	return dec, nil
}
