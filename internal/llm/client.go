package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codegpt/internal/config"
	"codegpt/internal/domain"
	"codegpt/internal/models"
)

// systemPrompt is the fixed instruction prepended to every completion
// request. It is static configuration, never user-controlled.
const systemPrompt = "You are CodeGPT, a coding assistant. Be concise and actionable. " +
	"Prefer fenced markdown code blocks (```python ... ```). " +
	"Preserve formatting and indentation."

// Client is the completion gateway: a stateless client for an
// OpenAI-compatible chat-completions endpoint. It performs a single blocking
// round trip per call with no retry, no fallback model and no streaming.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	registry *Registry
	client   *http.Client
}

// NewClient creates a gateway client. The timeout is applied to the whole
// round trip rather than inheriting the transport default.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, registry *Registry) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		model:    model,
		registry: registry,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the conversation to the completion endpoint and returns the
// generated text of the first choice verbatim. The system instruction is
// prepended here; callers pass conversation messages only. All failures are
// reported as *domain.GatewayError.
func (c *Client) Complete(ctx context.Context, msgs []models.Message) (string, error) {
	wire := make([]wireMessage, 0, len(msgs)+1)
	wire = append(wire, wireMessage{Role: string(models.RoleSystem), Content: systemPrompt})
	for _, m := range msgs {
		wire = append(wire, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := config.MaxCompletionTokens
	if c.registry != nil {
		maxTokens = c.registry.CapOutputTokens(c.model, maxTokens)
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    wire,
		Temperature: config.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayMalformed,
			Message: "failed to encode request",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayTransport,
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayTransport,
			Message: "request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayTransport,
			Message: "failed to read response",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayRemote,
			Message: remoteErrorMessage(resp.StatusCode, raw),
		}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayMalformed,
			Message: "failed to decode response",
			Err:     err,
		}
	}
	if parsed.Error != nil {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayRemote,
			Message: parsed.Error.Message,
		}
	}
	if len(parsed.Choices) == 0 {
		return "", &domain.GatewayError{
			Kind:    domain.GatewayMalformed,
			Message: "response contains no choices",
		}
	}

	// Pass the model output through unchanged; formatting and indentation
	// are the model's to decide.
	return parsed.Choices[0].Message.Content, nil
}

// remoteErrorMessage extracts the error message from a non-2xx body when the
// endpoint returned a structured error, falling back to the status line.
func remoteErrorMessage(status int, raw []byte) string {
	var parsed struct {
		Error *remoteError `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Sprintf("status %d: %s", status, parsed.Error.Message)
	}
	return fmt.Sprintf("status %d: %s", status, http.StatusText(status))
}
