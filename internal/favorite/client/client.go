// Package client talks to the maidmarket API on behalf of a signed-in
// customer. It is the remote side of the optimistic favorite toggle.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer carrying the API's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for baseURL (scheme and host, e.g.
// http://localhost:8080) authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListFavoriteIDs returns the confirmed favorite set of the user.
func (c *Client) ListFavoriteIDs(ctx context.Context) ([]string, error) {
	var out struct {
		IDs []string `json:"ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/favorites/ids", &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// AddFavorite favorites maidID. Adding an existing favorite succeeds.
func (c *Client) AddFavorite(ctx context.Context, maidID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/favorites/"+url.PathEscape(maidID), nil)
}

// RemoveFavorite unfavorites maidID. Removing a missing favorite succeeds.
func (c *Client) RemoveFavorite(ctx context.Context, maidID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/favorites/"+url.PathEscape(maidID), nil)
}

// Maid is the listing card returned by ListMaids.
type Maid struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Nationality   string   `json:"nationality"`
	Age           int      `json:"age"`
	Languages     []string `json:"languages"`
	MonthlySalary int64    `json:"monthly_salary"`
	Available     bool     `json:"available"`
}

// MaidQuery filters ListMaids. Zero values are omitted.
type MaidQuery struct {
	Nationality   string
	Search        string
	AvailableOnly bool
	Page          int
	PerPage       int
}

func (q MaidQuery) values() url.Values {
	v := url.Values{}
	if q.Nationality != "" {
		v.Set("nationality", q.Nationality)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.AvailableOnly {
		v.Set("available", "true")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// MaidPage is one page of ListMaids.
type MaidPage struct {
	Maids      []Maid `json:"maids"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

func (c *Client) ListMaids(ctx context.Context, q MaidQuery) (*MaidPage, error) {
	path := "/api/v1/maids"
	if qs := q.values().Encode(); qs != "" {
		path += "?" + qs
	}

	var page MaidPage
	if err := c.do(ctx, http.MethodGet, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
