/*
PURPOSE:
  HTTP client for the shared results service. One job: POST a finished
  report with a bearer token and tell the caller honestly whether the
  service took it.

REQUIREMENTS:
  User-specified:
  - Upload failures are reported, never retried automatically, and
    never touch the locally written report.

  Implementation-discovered:
  - The service's rejection body is worth carrying in the error; "403"
    alone sends people down the wrong debugging path.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/model

ERROR HANDLING:
  - Non-2xx responses become *UploadError with status and (truncated)
    body. Transport errors pass through wrapped.

IMPLEMENTATION RULES:
  - Use net/http. Enforce timeouts.
  - The report is sent exactly as serialized locally; no mutation on
    the way out.

USAGE:
  c := share.NewClient(cfg.ShareURL, cfg.UserAgent)
  err := c.Upload(ctx, report, tok.AccessToken)

RELATED FILES:
  - internal/model/types.go
  - internal/auth/manager.go

MAINTENANCE:
  - Update the endpoint path in config, not here, when the service
    moves.
*/

package share

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apertureless/burnbench/internal/model"
)

// UploadError is a results-service rejection.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("results service returned %d", e.Status)
	}
	return fmt.Sprintf("results service returned %d: %s", e.Status, e.Body)
}

// Client uploads reports to the results service.
type Client struct {
	URL       string
	UserAgent string
	HTTP      *http.Client
}

// NewClient creates a client for the given endpoint.
func NewClient(url, userAgent string) *Client {
	return &Client{
		URL:       url,
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
	}
}

// errorBodyLimit keeps rejection bodies printable.
const errorBodyLimit = 2048

// Upload sends rep to the results service. A nil return means the
// service accepted it.
func (c *Client) Upload(ctx context.Context, rep *model.Report, accessToken string) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &UploadError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return nil
}
