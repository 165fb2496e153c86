package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TTSConfig configures the text-to-speech service client.
type TTSConfig struct {
	APIKey  string
	URL     string
	Voice   string // defaults to it-IT_FrancescaV3Voice
	Timeout time.Duration
}

// TTSClient is a client for a Watson-style text-to-speech API.
type TTSClient struct {
	config     TTSConfig
	httpClient *http.Client
}

// NewTTSClient creates a new text-to-speech client.
func NewTTSClient(config TTSConfig) *TTSClient {
	if config.Voice == "" {
		config.Voice = "it-IT_FrancescaV3Voice"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &TTSClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether the client has credentials.
func (c *TTSClient) Configured() bool {
	return c.config.APIKey != "" && c.config.URL != ""
}

// Synthesize converts text to MP3 audio bytes in the configured voice.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tts client not configured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/synthesize?voice=%s", c.config.URL, url.QueryEscape(c.config.Voice))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mp3")
	req.SetBasicAuth("apikey", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, respBody)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}
