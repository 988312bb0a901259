package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ninepros_server/internal/ai/prompts"
	"ninepros_server/internal/llm"
)

// GenerateInput is a first-time generation request.
type GenerateInput struct {
	Prompt      string
	Provider    string
	Model       string
	RedesignURL string
	// HTML is a page to improve on, sent back to the model as its own
	// previous answer.
	HTML string
}

// GenerateSite starts a streaming generation. The caller reads fragments
// from the returned decoder and must Close it.
func (g *Generator) GenerateSite(ctx context.Context, in GenerateInput) (*llm.Decoder, error) {
	if strings.TrimSpace(in.Prompt) == "" && strings.TrimSpace(in.RedesignURL) == "" {
		return nil, fmt.Errorf("%w: prompt or redesign url", ErrMissingInput)
	}

	var redesignMarkdown string
	if in.RedesignURL != "" {
		if g.redesign == nil {
			return nil, fmt.Errorf("redesign is not available")
		}
		md, err := g.redesign.Fetch(ctx, in.RedesignURL)
		if err != nil {
			return nil, fmt.Errorf("loading redesign source: %w", err)
		}
		log.Printf("Loaded redesign source %s (%d chars)", in.RedesignURL, len(md))
		redesignMarkdown = md
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: prompts.GetSiteGenerationSystemPrompt()},
	}
	if strings.TrimSpace(in.HTML) != "" {
		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: in.HTML})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompts.GetSiteGenerationPrompt(in.Prompt, redesignMarkdown),
	})

	return g.llm.Stream(ctx, in.Provider, llm.ChatRequest{
		Model:       g.model(in.Model),
		Messages:    messages,
		Temperature: generationTemperature,
	})
}
