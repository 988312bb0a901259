package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ninepros_server/internal/ai/prompts"
	"ninepros_server/internal/llm"
	"ninepros_server/internal/patch"
	"ninepros_server/internal/types"
)

// EditInput is a follow-up edit of an existing page set.
type EditInput struct {
	Prompt              string
	Pages               []types.Page
	Provider            string
	Model               string
	SelectedElementHTML string
}

// EditPages asks the model for a patch and applies it to a copy of
// in.Pages. An empty model answer yields llm.ErrEmptyResponse.
func (g *Generator) EditPages(ctx context.Context, in EditInput) (*patch.Result, error) {
	if strings.TrimSpace(in.Prompt) == "" || len(in.Pages) == 0 {
		return nil, fmt.Errorf("%w: prompt and pages", ErrMissingInput)
	}

	content, err := g.llm.Complete(ctx, in.Provider, llm.ChatRequest{
		Model: g.model(in.Model),
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.GetSiteCodeChangeSystemPrompt()},
			{Role: llm.RoleUser, Content: prompts.GetSiteCodeChangePrompt(in.Prompt, in.Pages, in.SelectedElementHTML)},
		},
		MaxTokens:   editMaxTokens,
		Temperature: editTemperature,
	})
	if err != nil {
		return nil, err
	}

	result := patch.Apply(in.Pages, content)
	log.Printf("Applied edit: %d pages in, %d pages out, %d updated ranges", len(in.Pages), len(result.Pages), len(result.UpdatedLines))
	return &result, nil
}
