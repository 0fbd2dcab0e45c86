// Package client talks to the table API: page and column metadata queries used by the
// table controller, and row mutations for reference books.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/table"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	_ table.PageFetcher  = (*Client)(nil)
	_ table.ColumnSource = (*Client)(nil)
)

// Options configures a Client
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api/v1
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained request rate per second; zero disables limiting
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default transport
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client is a rate limited JSON client for the table API
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// New creates a Client
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    20,
				MaxConnsPerHost: 10,
				IdleConnTimeout: 20 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		limiter: limiter,
		log:     log,
	}
}

// FetchPage loads one page of a resource listing
func (c *Client) FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	var res model.PageResult
	if _, err := c.do(ctx, http.MethodPost, req.Resource+"/page", req, &res, false); err != nil {
		return nil, err
	}
	if res.Content == nil {
		res.Content = []model.Row{}
	}
	return &res, nil
}

// Columns loads the column mapping of a resource for a view. An empty response yields
// an empty mapping.
func (c *Client) Columns(ctx context.Context, resource string, view model.ViewKind) (*model.ColumnMapping, error) {
	var mapping model.ColumnMapping
	path := resource + "/columns?type=" + url.QueryEscape(string(view))
	if _, err := c.do(ctx, http.MethodGet, path, nil, &mapping, false); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateRow creates a reference book row and returns it as stored
func (c *Client) CreateRow(ctx context.Context, resource string, in model.RowInput) (model.Row, error) {
	var env envelope
	if _, err := c.do(ctx, http.MethodPost, resource+"/", in, &env, true); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateRow updates a reference book row and returns it as stored
func (c *Client) UpdateRow(ctx context.Context, resource string, id int64, in model.RowInput) (model.Row, error) {
	var env envelope
	path := fmt.Sprintf("%s/%d", resource, id)
	if _, err := c.do(ctx, http.MethodPut, path, in, &env, true); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteRow deletes a reference book row. API failures carry a fixed message.
func (c *Client) DeleteRow(ctx context.Context, resource string, id int64) error {
	path := fmt.Sprintf("%s/%d", resource, id)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, true)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		apiErr.Message = deleteFailedMessage
	}
	return err
}

// GetRow loads one record
func (c *Client) GetRow(ctx context.Context, resource string, id int64) (model.Row, error) {
	var row model.Row
	path := fmt.Sprintf("%s/%d", resource, id)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &row, false); err != nil {
		return nil, err
	}
	return row, nil
}

// UploadResult counts the rows an upload created and updated
type UploadResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// UploadFile sends a reference book workbook as the multipart field "file". Failures keep
// the server's message and per-row details.
func (c *Client) UploadFile(ctx context.Context, resource, name string, content io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create form file")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", name)
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish form")
	}

	var env struct {
		Data UploadResult `json:"data"`
	}
	if _, err := c.send(ctx, http.MethodPost, resource+"/upload-file", mw.FormDataContentType(), &body, &env, false); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// envelope mirrors the API's standard response structure
type envelope struct {
	Meta struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"meta"`
	Data model.Row `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, mutation bool) (int, error) {
	if body == nil {
		return c.send(ctx, method, path, "", nil, out, mutation)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode request body")
	}
	return c.send(ctx, method, path, "application/json", bytes.NewReader(b), out, mutation)
}

// send performs one rate limited request. A nil body sends no Content-Type.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any, mutation bool) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, errors.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrapf(err, "%s %s: failed to read response", method, path)
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("api request")

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, newAPIError(resp.StatusCode, data, mutation)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, errors.Wrapf(err, "%s %s: failed to decode response", method, path)
		}
	}
	return resp.StatusCode, nil
}
