// Package smartsheet appends final records to a Smartsheet sheet and
// attaches their PDFs to the new row.
package smartsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
	"github.com/labonzique/comcast-asrs-handler/internal/core/ports/driven"
	"github.com/labonzique/comcast-asrs-handler/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RowUploader = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.smartsheet.com/2.0"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 3
	maxRetryWait      = time.Minute
	listSeparator     = ", "
)

// Config holds configuration for the Smartsheet client.
type Config struct {
	// BaseURL is the API root (default: https://api.smartsheet.com/2.0).
	BaseURL string

	// APIToken is the bearer access token.
	APIToken string

	// SheetID identifies the target sheet.
	SheetID int64

	// ColumnIDs maps record fields to sheet column IDs. Fields without a
	// column are not sent.
	ColumnIDs map[string]int64

	// RequestsPerSecond caps the call rate. Zero disables the limit.
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxRetries bounds retries of rate-limited requests.
	MaxRetries int
}

// ConfigFromSettings builds a Config from the tracker settings.
func ConfigFromSettings(s domain.TrackerSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		APIToken:          s.APIToken,
		SheetID:           s.SheetID,
		ColumnIDs:         s.ColumnIDs,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// Client talks to the Smartsheet REST API.
type Client struct {
	http       *http.Client
	baseURL    string
	sheetID    int64
	columns    map[string]int64
	limiter    *rate.Limiter
	maxRetries int

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client. The token is sent as an OAuth2 bearer token.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIToken == "" || cfg.SheetID == 0 {
		return nil, fmt.Errorf("smartsheet: api token and sheet id %w", domain.ErrNotConfigured)
	}
	if len(cfg.ColumnIDs) == 0 {
		return nil, fmt.Errorf("smartsheet: column ids %w", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		sheetID:    cfg.SheetID,
		columns:    cfg.ColumnIDs,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
		sleep:      sleepContext,
	}, nil
}

// cell is one value in an added row.
type cell struct {
	ColumnID int64 `json:"columnId"`
	Value    any   `json:"value"`
}

// row is the add-rows request element.
type row struct {
	ToBottom bool   `json:"toBottom"`
	Cells    []cell `json:"cells"`
}

// result wraps Smartsheet write responses.
type result struct {
	Message    string `json:"message"`
	ResultCode int    `json:"resultCode"`
	Result     []struct {
		ID int64 `json:"id"`
	} `json:"result"`
}

// apiError is the Smartsheet error body.
type apiError struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

// AddRow appends the record at the bottom of the sheet, then attaches
// each output file found in attachmentDir. Attachment problems do not
// fail the row; they are listed in the result.
func (c *Client) AddRow(ctx context.Context, record domain.FinalRecord, attachmentDir string) (*driven.RowResult, error) {
	cells := c.buildCells(record)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: record has no mapped columns", domain.ErrInvalidInput)
	}

	body, err := json.Marshal([]row{{ToBottom: true, Cells: cells}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var res result
	path := fmt.Sprintf("/sheets/%d/rows", c.sheetID)
	if err := c.do(ctx, path, "application/json", nil, body, &res); err != nil {
		return nil, fmt.Errorf("add row: %w", err)
	}
	if len(res.Result) == 0 {
		return nil, fmt.Errorf("add row: response carried no row")
	}
	rowID := res.Result[0].ID
	logger.Info("Row successfully added to Smartsheet.")

	out := &driven.RowResult{RowID: rowID}
	for _, name := range record.AllOutputFiles {
		filePath := filepath.Join(attachmentDir, name)
		if _, err := os.Stat(filePath); err != nil {
			logger.Warn("File %s not found.", filePath)
			out.Missing = append(out.Missing, name)
			continue
		}
		if err := c.attach(ctx, rowID, filePath); err != nil {
			logger.Error("Error attaching file %s: %v", filePath, err)
			if out.Failed == nil {
				out.Failed = make(map[string]error)
			}
			out.Failed[name] = err
			if errors.Is(err, domain.ErrAuthInvalid) {
				return out, err
			}
			continue
		}
		logger.Info("File %s successfully attached.", filePath)
		out.Attached = append(out.Attached, name)
	}
	return out, nil
}

// buildCells maps the record's present fields to configured columns,
// ordered by field name.
func (c *Client) buildCells(record domain.FinalRecord) []cell {
	fields := record.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := c.columns[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	cells := make([]cell, 0, len(names))
	for _, name := range names {
		value := fields[name]
		if list, ok := value.([]string); ok {
			value = strings.Join(list, listSeparator)
		}
		cells = append(cells, cell{ColumnID: c.columns[name], Value: value})
	}
	return cells
}

func (c *Client) attach(ctx context.Context, rowID int64, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filePath)}),
	}
	path := fmt.Sprintf("/sheets/%d/rows/%d/attachments", c.sheetID, rowID)
	return c.do(ctx, path, domain.MIMETypePDF, headers, content, nil)
}

// do POSTs body and decodes a 2xx response into out. Rate-limited calls
// are retried after the server's Retry-After delay.
func (c *Client) do(ctx context.Context, path, contentType string, headers map[string]string, body []byte, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			wait := retryAfter(resp.Header.Get("Retry-After"), attempt)
			logger.Warn("Smartsheet rate limit hit; retrying in %s", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return statusError(resp.StatusCode, data)
		}
		if readErr != nil {
			return fmt.Errorf("read response: %w", readErr)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

// statusError maps an HTTP failure onto domain errors.
func statusError(status int, body []byte) error {
	var apiErr apiError
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = fmt.Sprintf("%s (code %d)", apiErr.Message, apiErr.ErrorCode)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("smartsheet error (status %d): %w: %s", status, domain.ErrAuthInvalid, msg)
	case http.StatusNotFound:
		return fmt.Errorf("smartsheet error (status %d): %w: %s", status, domain.ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("smartsheet error (status %d): %w: %s", status, domain.ErrRateLimited, msg)
	default:
		return fmt.Errorf("smartsheet error (status %d): %s", status, msg)
	}
}

// retryAfter parses a Retry-After header in seconds, falling back to
// exponential backoff from one second.
func retryAfter(header string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryWait)
	}
	return min(time.Second<<attempt, maxRetryWait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
