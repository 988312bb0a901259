package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.True(t, ShouldRetry(errors.New("503 Service Unavailable")))
	assert.True(t, ShouldRetry(errors.New("dial tcp: i/o timeout")))
	assert.True(t, ShouldRetry(fmt.Errorf("llama: %w", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"})))
	assert.False(t, ShouldRetry(&openai.APIError{HTTPStatusCode: 400, Message: "bad request"}))
	assert.False(t, ShouldRetry(errors.New("invalid model")))
	assert.True(t, ShouldRetry(&openai.RequestError{HTTPStatusCode: 502, Err: errors.New("upstream html page")}))
}

func TestUpstreamStatus(t *testing.T) {
	assert.Equal(t, http.StatusPaymentRequired, UpstreamStatus(errors.New("You have exceeded your monthly included credits")))
	assert.Equal(t, http.StatusPaymentRequired, UpstreamStatus(&openai.APIError{HTTPStatusCode: 402, Message: "nope"}))
	assert.Equal(t, http.StatusPaymentRequired, UpstreamStatus(fmt.Errorf("call failed: %w", errors.New("insufficient_quota"))))
	assert.Equal(t, http.StatusPaymentRequired, UpstreamStatus(&openai.RequestError{HTTPStatusCode: 402, Err: errors.New("<html>")}))
	assert.Equal(t, http.StatusInternalServerError, UpstreamStatus(errors.New("connection refused")))
	assert.Equal(t, http.StatusOK, UpstreamStatus(nil))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ContentType("/"))
	assert.Equal(t, "text/html; charset=utf-8", ContentType("/about.HTML"))
	assert.Equal(t, "text/css; charset=utf-8", ContentType("/style.css"))
	assert.Equal(t, "application/octet-stream", ContentType("/font.woff2"))
}
