// Package analyzer talks to the remote spreadsheet analysis service.
// The service accepts a workbook upload and answers with an analysis envelope.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// DefaultMaxUploadSize bounds the workbook size sent to the service.
const DefaultMaxUploadSize = 20 << 20

// DefaultMaxResponseSize bounds how much of the service's answer is read.
const DefaultMaxResponseSize = 32 << 20

var (
	// ErrTooLarge is returned when the workbook exceeds the upload limit.
	ErrTooLarge = errors.New("workbook exceeds upload limit")
	// ErrResponseTooLarge is returned when the service answers with more
	// than the response limit.
	ErrResponseTooLarge = errors.New("analysis response exceeds limit")
)

// Client uploads workbooks to the analysis service.
type Client struct {
	baseURL         string
	maxUploadSize   int64
	maxResponseSize int64
	httpClient      *http.Client
	logger          *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxUploadSize overrides the upload limit. Non-positive values are ignored.
func WithMaxUploadSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxUploadSize = n
		}
	}
}

// WithMaxResponseSize overrides the response limit. Non-positive values are ignored.
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		maxUploadSize:   DefaultMaxUploadSize,
		maxResponseSize: DefaultMaxResponseSize,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze uploads the workbook as multipart field "file" and returns the
// decoded analysis. Service-side failures come back as *analysis.ServiceError.
func (c *Client) Analyze(ctx context.Context, fileName string, workbook io.Reader) (*analysis.AnalysisResult, error) {
	data, err := io.ReadAll(io.LimitReader(workbook, c.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if int64(len(data)) > c.maxUploadSize {
		return nil, fmt.Errorf("%s: %w", fileName, ErrTooLarge)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post analyze: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(respBody)) > c.maxResponseSize {
		return nil, fmt.Errorf("%s: status %d: %w", fileName, resp.StatusCode, ErrResponseTooLarge)
	}

	result, err := analysis.Decode(respBody)
	var svcErr *analysis.ServiceError
	if errors.As(err, &svcErr) {
		// Some deployments answer rejected workbooks with a 4xx and an
		// error envelope; either way the message goes back unchanged.
		c.logger.Warn("analysis rejected",
			zap.String("file", fileName),
			zap.Int("status", resp.StatusCode),
			zap.String("message", svcErr.Message))
		return nil, svcErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analyzer error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	c.logger.Info("analysis completed",
		zap.String("file", fileName),
		zap.Int("bytes", len(data)),
		zap.Int("rows", result.TotalRows()),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}
