// Package ocr talks to the remote OCR service and cleans up the text it returns.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyText is returned when the service answers without any text.
var ErrEmptyText = errors.New("ocr service returned empty text")

// Extractor turns a base64-encoded document into text.
type Extractor interface {
	ExtractText(ctx context.Context, payloadBase64 string) (string, error)
}

// Config configures the OCR HTTP client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // default 120s
	RetryCount int
}

type ocrRequest struct {
	PDFBase64 string `json:"pdfBase64"`
}

type ocrResponse struct {
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
}

// StatusError is a non-2xx answer from the OCR service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ocr service returned status %d: %s", e.StatusCode, truncate(e.Body, 300))
}

// Client posts documents to {BaseURL}/ocr.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger.With("component", "ocr"),
	}
}

// ExtractText sends the payload and returns the trimmed text. Failure
// sentinels in the text are not treated as errors here; see IsFailureText.
func (c *Client) ExtractText(ctx context.Context, payloadBase64 string) (string, error) {
	start := time.Now()
	c.logger.Debug("ocr.request.start", "payload_len", len(payloadBase64))

	var out ocrResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ocrRequest{PDFBase64: payloadBase64}).
		SetResult(&out).
		Post("/ocr")
	if err != nil {
		c.logger.Error("ocr.request.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("call ocr service: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("ocr.request.status", "status", resp.StatusCode(), "elapsed_ms", time.Since(start).Milliseconds())
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrEmptyText
	}
	c.logger.Info("ocr.request.ok", "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
