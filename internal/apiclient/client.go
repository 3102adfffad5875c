// Package apiclient is an HTTP client for the test-case manager REST API.
//
// Client implements importer.Gateway, so the CLI can run the import
// pipeline on the user's machine against a remote server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tcm/internal/core"
	"github.com/JonMunkholm/tcm/internal/importer"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

var _ importer.Gateway = (*Client)(nil)

// APIError is a non-2xx response. Message is the server's user-facing
// message and is shown verbatim.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (HTTP %d, %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// UserMessage returns the server's message without transport details.
func (e *APIError) UserMessage() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes a JSON response into out, which may
// be nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// checkResponse turns a non-2xx response into *APIError.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// download fetches a file endpoint and returns its body and the file name
// from Content-Disposition.
func (c *Client) download(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, fileName(resp.Header.Get("Content-Disposition")), nil
}

func fileName(disposition string) string {
	_, name, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	return strings.Trim(name, `"`)
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// Ping checks the server's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// ExportCSV downloads every test case as CSV.
func (c *Client) ExportCSV(ctx context.Context) (data []byte, name string, err error) {
	return c.download(ctx, "/api/testcases/export")
}

// Template downloads the import template.
func (c *Client) Template(ctx context.Context) (data []byte, name string, err error) {
	return c.download(ctx, "/api/testcases/template")
}

// Dashboard fetches the dashboard statistics.
func (c *Client) Dashboard(ctx context.Context) (core.Dashboard, error) {
	var d core.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &d)
	return d, err
}

// StartImport uploads a file for a server-side import and returns the job id.
func (c *Client) StartImport(ctx context.Context, name string, data []byte, skipHeader bool) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("skipHeader", strconv.FormatBool(skipHeader)); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/testcases/import", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var out struct {
		ImportID string `json:"import_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode import response: %w", err)
	}
	return out.ImportID, nil
}

// ImportProgress returns the current state of a server-side import.
func (c *Client) ImportProgress(ctx context.Context, importID string) (core.ImportProgress, error) {
	var p core.ImportProgress
	err := c.do(ctx, http.MethodGet, "/api/imports/"+url.PathEscape(importID), nil, &p)
	return p, err
}

// ImportResult waits for a server-side import to finish. The request is
// not bound by the client timeout; use ctx to limit the wait.
func (c *Client) ImportResult(ctx context.Context, importID string) (*core.ImportResult, error) {
	waiting := *c
	hc := *c.http
	hc.Timeout = 0
	waiting.http = &hc

	var res core.ImportResult
	if err := waiting.do(ctx, http.MethodGet, "/api/imports/"+url.PathEscape(importID)+"/result", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelImport asks the server to stop a running import.
func (c *Client) CancelImport(ctx context.Context, importID string) error {
	return c.do(ctx, http.MethodPost, "/api/imports/"+url.PathEscape(importID)+"/cancel", nil, nil)
}
