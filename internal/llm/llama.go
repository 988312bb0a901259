package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultLlamaURL = "https://api.llama.com/compat/v1"

// Llama talks to the hosted Llama API through its OpenAI-compatible
// endpoint.
type Llama struct {
	client *openai.Client
}

func NewLlama(baseURL, apiKey string) *Llama {
	if baseURL == "" {
		baseURL = defaultLlamaURL
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	return &Llama{client: openai.NewClientWithConfig(config)}
}

func (l *Llama) ID() ProviderID { return ProviderLlama }

func (l *Llama) request(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}

// Complete returns *openai.APIError for error responses, so callers can
// classify them with errors.As.
func (l *Llama) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, l.request(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (l *Llama) Stream(ctx context.Context, req ChatRequest) (*Decoder, error) {
	stream, err := l.client.CreateChatCompletionStream(ctx, l.request(req))
	if err != nil {
		return nil, err
	}
	return NewDecoder(llamaStream{stream}), nil
}

// llamaStream adapts the go-openai stream, which ends with io.EOF at the
// [DONE] event.
type llamaStream struct {
	stream *openai.ChatCompletionStream
}

func (s llamaStream) Recv() (Chunk, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return Chunk{}, err
	}
	if len(resp.Choices) == 0 {
		return Chunk{}, nil
	}
	return Chunk{Text: resp.Choices[0].Delta.Content}, nil
}

func (s llamaStream) Close() error { return s.stream.Close() }
