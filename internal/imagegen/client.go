// Package imagegen calls a hosted text-to-image API for moodboard inspiration.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/metrics"
)

var (
	// ErrNotConfigured is returned when no API endpoint is set.
	ErrNotConfigured = errors.New("image generation not configured")

	// ErrProvider wraps non-2xx responses and transport failures.
	ErrProvider = errors.New("image provider error")
)

// Config holds the provider settings
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Size    string
	Timeout time.Duration
}

// Image is one generated result; exactly one of URL or B64JSON is set
type Image struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
}

type generateRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type generateResponse struct {
	Data  []Image `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to POST {base}/images/generations
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client; an empty BaseURL yields a client whose
// Generate always returns ErrNotConfigured.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an endpoint is configured
func (c *Client) Enabled() bool {
	return c.cfg.BaseURL != ""
}

// Generate requests n images for prompt
func (c *Client) Generate(ctx context.Context, prompt string, n int) ([]Image, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	images, err := c.generate(ctx, prompt, n)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordExternalCall("imagegen", status, time.Since(start))
	return images, err
}

func (c *Client) generate(ctx context.Context, prompt string, n int) ([]Image, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		N:      n,
		Size:   c.cfg.Size,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var out generateResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Error != nil {
			return nil, fmt.Errorf("%w: %d %s", ErrProvider, resp.StatusCode, out.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: no images returned", ErrProvider)
	}
	return out.Data, nil
}

// Fetch downloads a provider-hosted image so it can be copied to storage
func (c *Client) Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch status %d", ErrProvider, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrProvider, maxBytes)
	}
	return data, nil
}
