// Package floorplan sends floor plan images to an analysis service that
// measures the room and reports the drawing's scale.
package floorplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/metrics"
)

var (
	// ErrNotConfigured is returned when no analysis endpoint is set.
	ErrNotConfigured = errors.New("floor plan analysis not configured")

	// ErrAnalysis wraps failed or unusable analysis responses.
	ErrAnalysis = errors.New("floor plan analysis failed")
)

// Config holds the analysis endpoint settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Analysis is the measured room
type Analysis struct {
	WidthFt       float64 `json:"width_ft"`
	LengthFt      float64 `json:"length_ft"`
	PixelsPerFoot float64 `json:"pixels_per_foot"`
	WidthPx       int     `json:"width_px"`
	HeightPx      int     `json:"height_px"`
}

// Validate rejects analyses that cannot be applied to a room
func (a *Analysis) Validate() error {
	if a.WidthFt <= 0 || a.LengthFt <= 0 {
		return fmt.Errorf("%w: non-positive dimensions", ErrAnalysis)
	}
	if a.PixelsPerFoot <= 0 {
		return fmt.Errorf("%w: non-positive scale", ErrAnalysis)
	}
	return nil
}

// Client posts images to {base}/analyze
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Enabled reports whether an endpoint is configured
func (c *Client) Enabled() bool {
	return c.cfg.BaseURL != ""
}

// Analyze uploads the image as multipart field "file"
func (c *Client) Analyze(ctx context.Context, filename, contentType string, image []byte) (*Analysis, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	a, err := c.analyze(ctx, filename, contentType, image)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordExternalCall("floorplan", status, time.Since(start))
	return a, err
}

func (c *Client) analyze(ctx context.Context, filename, contentType string, image []byte) (*Analysis, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAnalysis, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var a Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrAnalysis, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
