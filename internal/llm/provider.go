// Package llm talks to the chat models that generate and edit sites.
// Each supported backend is a Provider; the set is closed and selected by
// ProviderID.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type ProviderID string

const (
	ProviderOllama ProviderID = "ollama"
	ProviderLlama  ProviderID = "llama"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("no content returned from the model")
	// ErrMalformedChunk marks a stream line that could not be decoded. The
	// decoder skips such chunks.
	ErrMalformedChunk = errors.New("malformed stream chunk")
)

// ParseProviderID validates a provider name from a request or config value.
func ParseProviderID(s string) (ProviderID, error) {
	switch id := ProviderID(strings.ToLower(strings.TrimSpace(s))); id {
	case ProviderOllama, ProviderLlama:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the provider-neutral chat call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Chunk is one decoded stream event. Done marks the end-of-stream sentinel.
type Chunk struct {
	Text string
	Done bool
}

// Provider sends chat requests to one model backend.
type Provider interface {
	ID() ProviderID
	// Complete performs a non-streaming call and returns the assistant text.
	Complete(ctx context.Context, req ChatRequest) (string, error)
	// Stream starts a streaming call. The caller must Close the decoder.
	Stream(ctx context.Context, req ChatRequest) (*Decoder, error)
}

// Registry resolves provider names to providers, with a default for
// requests that do not name one.
type Registry struct {
	providers map[ProviderID]Provider
	def       ProviderID
}

func NewRegistry(def ProviderID, providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderID]Provider, len(providers)), def: def}
	for _, p := range providers {
		r.providers[p.ID()] = p
	}
	return r
}

// Get returns the provider named by id, or the default when id is empty.
func (r *Registry) Get(id string) (Provider, error) {
	pid := r.def
	if strings.TrimSpace(id) != "" {
		var err error
		if pid, err = ParseProviderID(id); err != nil {
			return nil, err
		}
	}
	p, ok := r.providers[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not configured", ErrUnknownProvider, pid)
	}
	return p, nil
}
