package llm

// This file defines the wire types for the chat-completions endpoint. The
// structure follows the OpenAI Chat Completions API specification, which most
// hosted and self-hosted gateways expose as a unified endpoint.

// completionRequest is the request payload sent to the completion endpoint.
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// wireMessage is a single role/content message on the wire.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse is the subset of the response we consume.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *remoteError `json:"error,omitempty"`
}

// remoteError is the error object OpenAI-compatible endpoints return in the
// body (quota, auth, invalid model).
type remoteError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}
