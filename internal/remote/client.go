// Package remote drives a running journal service over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
	"github.com/plantbygpt/plantbygpt/internal/backup"
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("service returned %d: %s", e.Status, e.Message)
}

// Client talks to one service instance.
type Client struct {
	http *resty.Client
}

// New returns a client for the service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &Client{http: c}
}

func apiError(resp *resty.Response) error {
	e := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*respond.ErrorResponse); ok && body != nil {
		e.Message = body.Message
	}
	return e
}

// Health returns the reported service status, healthy or unhealthy.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&respond.ErrorResponse{}).
		Get("/api/health")
	if err != nil {
		return "", fmt.Errorf("health request: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	return out.Status, nil
}

// ExportBackup downloads an archive into w and returns the file name the service
// suggested.
func (c *Client) ExportBackup(ctx context.Context, w io.Writer) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get("/api/backup")
	if err != nil {
		return "", fmt.Errorf("export request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		return "", &APIError{Status: resp.StatusCode(), Message: strings.TrimSpace(string(msg))}
	}
	if _, err := io.Copy(w, body); err != nil {
		return "", fmt.Errorf("read archive: %w", err)
	}

	name := "backup.zip"
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, nil
}

// ImportBackup uploads an archive and returns the service's import report.
func (c *Client) ImportBackup(ctx context.Context, data []byte) (*backup.ImportReport, error) {
	var report backup.ImportReport
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/zip").
		SetBody(data).
		SetResult(&report).
		SetError(&respond.ErrorResponse{}).
		Post("/api/backup")
	if err != nil {
		return nil, fmt.Errorf("import request: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &report, nil
}
