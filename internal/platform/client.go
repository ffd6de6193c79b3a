package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"riderapp/internal/config"
)

// Client is the HTTP client for the remote ride platform. All entities it
// returns are owned by the backend; callers cache snapshots and tolerate
// staleness between polls.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	cfg        config.PlatformConfig
	log        *zap.Logger
}

// NewClient creates a new platform Client.
func NewClient(cfg config.PlatformConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		authToken: cfg.AuthToken,
		// Deadlines are applied per call; the transport carries none so the
		// longer detail and recalculation deadlines are not cut short.
		httpClient: &http.Client{},
		cfg:        cfg,
		log:        log,
	}
}

// apiErrorBody is the platform's error envelope.
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doJSON performs one request under the standard request timeout. When
// idempotent is true an Idempotency-Key header is attached so the platform
// can dedupe retried mutations.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, idempotent bool) error {
	return c.doJSONTimeout(ctx, method, path, body, out, c.cfg.RequestTimeout, idempotent)
}

// doJSONTimeout is doJSON with a caller-chosen deadline. The heavy detail
// fetch and rental recalculation use longer ones.
func (c *Client) doJSONTimeout(ctx context.Context, method, path string, body, out any, timeout time.Duration, idempotent bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	if idempotent {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		var errBody apiErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return mapBusinessError(&APIError{
			StatusCode: resp.StatusCode,
			Code:       errBody.Code,
			Message:    errBody.Message,
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
