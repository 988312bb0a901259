package ai

import (
	"context"
	"errors"
	"strings"

	"ninepros_server/internal/llm"
)

const (
	generationTemperature = 0.7
	// Edits stay close to the current markup.
	editTemperature = 0.3
	editMaxTokens   = 8192
)

// ErrMissingInput is returned when a request has nothing to generate from.
var ErrMissingInput = errors.New("missing required input")

// RedesignSource turns an existing website into prompt material.
type RedesignSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Generator drives site generation and follow-up edits against the
// configured chat models.
type Generator struct {
	llm          *llm.Client
	redesign     RedesignSource
	defaultModel string
}

// NewGenerator creates a Generator. redesign may be nil, in which case
// redesign URLs are rejected.
func NewGenerator(client *llm.Client, redesign RedesignSource, defaultModel string) *Generator {
	return &Generator{
		llm:          client,
		redesign:     redesign,
		defaultModel: defaultModel,
	}
}

func (g *Generator) model(requested string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	return g.defaultModel
}
