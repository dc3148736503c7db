package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aurahq/aura_service/internal/errors"
)

// DeepgramClient wraps the Deepgram prerecorded speech-to-text REST API.
type DeepgramClient struct {
	apiKey string
	model  string
	client *http.Client
}

// NewDeepgramClient creates a new Deepgram client.
func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "nova-2"
	}
	return &DeepgramClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends recorded audio to Deepgram and returns the
// transcript of the first channel.
func (c *DeepgramClient) Transcribe(ctx context.Context, audioData []byte, contentType string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New(errors.ErrTranscriptionFailed, "Deepgram credentials not configured")
	}
	if len(audioData) == 0 {
		return "", errors.Validation("audio payload is empty")
	}

	u := url.URL{
		Scheme: "https",
		Host:   "api.deepgram.com",
		Path:   "/v1/listen",
	}
	q := u.Query()
	q.Set("model", c.model)
	q.Set("smart_format", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), bytes.NewReader(audioData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if contentType == "" {
		contentType = "audio/webm"
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepgram api error %d: %s", resp.StatusCode, string(body))
	}

	var result deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return "", errors.New(errors.ErrTranscriptionFailed, "no transcript in response")
	}
	return result.Results.Channels[0].Alternatives[0].Transcript, nil
}
