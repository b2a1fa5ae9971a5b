// Package contentapi queries the publisher's keyword-indexed article API.
package contentapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/eleco-media/amaike/internal/model"
)

const defaultBaseURL = "https://articapiv3.eleco.com.ar/api/v2/search"

// ErrBackendUnavailable marks transport failures and non-2xx responses from
// the article API. Callers treat it as a recoverable per-branch failure, not
// a fatal error. The client never retries; retry policy belongs upstream.
var ErrBackendUnavailable = eris.New("contentapi: backend unavailable")

// Client performs keyword searches against the article API.
type Client interface {
	Search(ctx context.Context, keyword string, page, size int) (*SearchResponse, error)
}

// SearchResponse is the paginated result of GET /search.
type SearchResponse struct {
	Data        []model.Article `json:"data"`
	Total       int             `json:"total"`
	CurrentPage int             `json:"current_page"`
	LastPage    int             `json:"last_page"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles outgoing searches.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an article API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, keyword string, page, size int) (*SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "contentapi: rate limiter")
		}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "contentapi: parse base url")
	}
	filter, err := json.Marshal(map[string]string{"search": keyword})
	if err != nil {
		return nil, eris.Wrap(err, "contentapi: marshal filter")
	}
	q := u.Query()
	q.Set("filter", string(filter))
	q.Set("sortType", "DESC")
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "contentapi: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(ErrBackendUnavailable, "contentapi: send request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(ErrBackendUnavailable, "contentapi: read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(ErrBackendUnavailable, "contentapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "contentapi: unmarshal response")
	}

	return &result, nil
}
