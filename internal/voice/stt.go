// Package voice provides the speech input/output adapter: capture turns
// spoken audio into text, render turns text into played-back speech.
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

// STTConfig configures the speech-to-text service client.
type STTConfig struct {
	APIKey  string
	URL     string
	Model   string // defaults to en-US_BroadbandModel
	Timeout time.Duration
}

// Transcription is one recognized alternative from the service.
type Transcription struct {
	Transcript string
	Confidence float64
}

// STTClient is a client for a Watson-style speech-to-text API.
type STTClient struct {
	config     STTConfig
	httpClient *http.Client
}

// NewSTTClient creates a new speech-to-text client.
func NewSTTClient(config STTConfig) *STTClient {
	if config.Model == "" {
		config.Model = "en-US_BroadbandModel"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &STTClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether the client has credentials.
func (c *STTClient) Configured() bool {
	return c.config.APIKey != "" && c.config.URL != ""
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize sends WAV audio bytes and returns the best transcription.
// An empty result set returns a zero Transcription, not an error.
func (c *STTClient) Recognize(ctx context.Context, audio []byte) (Transcription, error) {
	if !c.Configured() {
		return Transcription{}, fmt.Errorf("stt client not configured")
	}

	endpoint := fmt.Sprintf("%s/v1/recognize?model=%s&smart_formatting=true",
		c.config.URL, url.QueryEscape(c.config.Model))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(audio))
	if err != nil {
		return Transcription{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.SetBasicAuth("apikey", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Transcription{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Transcription{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Results) == 0 || len(parsed.Results[0].Alternatives) == 0 {
		return Transcription{}, nil
	}

	best := parsed.Results[0].Alternatives[0]
	return Transcription{Transcript: best.Transcript, Confidence: best.Confidence}, nil
}
