package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	maxErrorBody     = 64 * 1024
)

// Ollama talks to a local Ollama server. Streaming responses are one JSON
// object per line, the last one carrying "done": true.
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllama(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &Ollama{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

func (o *Ollama) ID() ProviderID { return ProviderOllama }

func (o *Ollama) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := o.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Message.Content, nil
}

func (o *Ollama) Stream(ctx context.Context, req ChatRequest) (*Decoder, error) {
	resp, err := o.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return NewOllamaDecoder(resp.Body), nil
}

func (o *Ollama) do(ctx context.Context, req ChatRequest, stream bool) (*http.Response, error) {
	body := ollamaRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   stream,
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		body.Options = &ollamaOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling ollama request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, ollamaError(resp.StatusCode, errBody)
	}
	return resp, nil
}

// ollamaError keeps the "<code> <status text>" form so ShouldRetry can
// classify it.
func ollamaError(status int, body []byte) error {
	var resp ollamaResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		msg = resp.Error
	}
	if msg == "" {
		return fmt.Errorf("ollama returned %d %s", status, http.StatusText(status))
	}
	return fmt.Errorf("ollama returned %d %s: %s", status, http.StatusText(status), msg)
}

// NewOllamaDecoder decodes an Ollama NDJSON stream from r. If r is an
// io.Closer, closing the decoder closes it.
func NewOllamaDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lr := &ndjsonReader{scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		lr.body = c
	}
	return NewDecoder(lr)
}

type ndjsonReader struct {
	scanner *bufio.Scanner
	body    io.Closer
}

func (r *ndjsonReader) Recv() (Chunk, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var resp ollamaResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return Chunk{}, fmt.Errorf("%w: %v", ErrMalformedChunk, err)
		}
		if resp.Error != "" {
			return Chunk{}, fmt.Errorf("ollama: %s", resp.Error)
		}
		return Chunk{Text: resp.Message.Content, Done: resp.Done}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("reading stream: %w", err)
	}
	return Chunk{}, io.EOF
}

func (r *ndjsonReader) Close() error {
	if r.body == nil {
		return nil
	}
	return r.body.Close()
}
