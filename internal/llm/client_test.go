package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codegpt/internal/config"
	"codegpt/internal/domain"
	"codegpt/internal/models"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return NewClient(url, "test-key", "gpt-4o-mini", 5*time.Second, registry)
}

func TestCompleteSuccess(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  def f():\n      pass\n"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	reply, err := client.Complete(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "write f"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// Output is passed through verbatim, indentation included.
	if reply != "  def f():\n      pass\n" {
		t.Errorf("unexpected reply %q", reply)
	}

	if got.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", got.Model)
	}
	if got.Temperature != config.Temperature {
		t.Errorf("expected temperature %v, got %v", config.Temperature, got.Temperature)
	}
	if got.MaxTokens != config.MaxCompletionTokens {
		t.Errorf("expected max_tokens %d, got %d", config.MaxCompletionTokens, got.MaxTokens)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 wire messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("expected system instruction first, got role %q", got.Messages[0].Role)
	}
	if got.Messages[1].Content != "write f" {
		t.Errorf("unexpected user message %q", got.Messages[1].Content)
	}
}

func TestCompleteRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"requests"}}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Complete(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "hi"},
	})

	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gatewayErr.Kind != domain.GatewayRemote {
		t.Errorf("expected remote kind, got %q", gatewayErr.Kind)
	}
}

func TestCompleteErrorInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Complete(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "hi"},
	})

	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gatewayErr.Kind != domain.GatewayRemote {
		t.Errorf("expected remote kind, got %q", gatewayErr.Kind)
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"choices": [`},
		{name: "empty choices", body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := testClient(t, server.URL)
			_, err := client.Complete(context.Background(), []models.Message{
				{Role: models.RoleUser, Content: "hi"},
			})

			var gatewayErr *domain.GatewayError
			if !errors.As(err, &gatewayErr) {
				t.Fatalf("expected GatewayError, got %v", err)
			}
			if gatewayErr.Kind != domain.GatewayMalformed {
				t.Errorf("expected malformed kind, got %q", gatewayErr.Kind)
			}
		})
	}
}

func TestCompleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := testClient(t, server.URL)
	_, err := client.Complete(context.Background(), []models.Message{
		{Role: models.RoleUser, Content: "hi"},
	})

	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gatewayErr.Kind != domain.GatewayTransport {
		t.Errorf("expected transport kind, got %q", gatewayErr.Kind)
	}
}

func TestClientModel(t *testing.T) {
	client := testClient(t, "http://localhost")
	if client.Model() != "gpt-4o-mini" {
		t.Errorf("expected configured model gpt-4o-mini, got %q", client.Model())
	}
}

func TestRegistryCapsOutputTokens(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if got := registry.CapOutputTokens("gpt-3.5-turbo", 10000); got != 4096 {
		t.Errorf("expected cap 4096, got %d", got)
	}
	if got := registry.CapOutputTokens("gpt-3.5-turbo", 900); got != 900 {
		t.Errorf("expected 900 under the cap, got %d", got)
	}
	if got := registry.CapOutputTokens("some-unknown-model", 900); got != 900 {
		t.Errorf("expected unknown model to pass through, got %d", got)
	}

	if _, ok := registry.Lookup("gpt-4o-mini"); !ok {
		t.Error("expected gpt-4o-mini in the registry")
	}
	if _, ok := registry.Lookup("some-unknown-model"); ok {
		t.Error("did not expect unknown model in the registry")
	}
}
