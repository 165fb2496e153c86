package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatService is the language-understanding boundary. One call, one
// attempt, no retry.
type ChatService interface {
	// Chat sends a system instruction and user message and returns the
	// raw reply text.
	Chat(ctx context.Context, system, user string) (string, error)

	// ChatJSON is like Chat but asks the service for a single JSON
	// object reply.
	ChatJSON(ctx context.Context, system, user string) (string, error)
}

// OpenAIConfig configures the OpenAI chat completions client.
type OpenAIConfig struct {
	APIKey       string
	Organization string
	BaseURL      string // defaults to https://api.openai.com
	Model        string // defaults to gpt-3.5-turbo
	Timeout      time.Duration
}

// OpenAIClient is a client for the OpenAI Chat Completions API. The
// wire format is the common one, so any compatible endpoint works via
// BaseURL.
type OpenAIClient struct {
	config     OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if config.Model == "" {
		config.Model = "gpt-3.5-turbo"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &OpenAIClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether the client has credentials. An
// unconfigured client answers every call with an error, which surfaces
// to the user as the fixed "service not configured" message.
func (c *OpenAIClient) Configured() bool {
	return c.config.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends a plain chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

// ChatJSON sends a chat completion request with the JSON-object
// response format, matching the descriptor contract.
func (c *OpenAIClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, &responseFormat{Type: "json_object"})
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, format *responseFormat) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openai client not configured")
	}

	temperature := 0.7
	reqBody := chatRequest{
		Model:          c.config.Model,
		MaxTokens:      250,
		Temperature:    &temperature,
		ResponseFormat: format,
	}
	if system != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "system", Content: system})
	}
	reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if c.config.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.config.Organization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response: no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
