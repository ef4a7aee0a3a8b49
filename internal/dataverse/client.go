// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataverse is a small client for the two Dataverse REST endpoints
// the fetcher needs: the native dataset API and the data access API.
package dataverse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/pdiddy/darus-fetch/internal/httputil"
	"github.com/pdiddy/darus-fetch/pkg/types"
)

// keyHeader carries the API token when the header scheme is used.
const keyHeader = "X-Dataverse-key"

// Client holds what both APIs share: the installation URL, the HTTP client
// and the credentials.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	apiKey     string
	bearer     bool
	maxRetries int
}

// Authenticated reports whether requests carry an API key.
func (c *Client) Authenticated() bool {
	return c.apiKey != ""
}

// NativeAPI reads dataset metadata.
type NativeAPI struct {
	*Client
}

// DataAccessAPI downloads file content.
type DataAccessAPI struct {
	*Client
}

// NewSession builds the API pair for baseURL. An empty apiKey yields
// anonymous clients. With the bearer scheme the key is attached by an
// oauth2 transport; otherwise it is sent in the X-Dataverse-key header.
func NewSession(ctx context.Context, baseURL, apiKey string, opts types.Options) (*NativeAPI, *DataAccessAPI, error) {
	c, err := newClient(ctx, baseURL, apiKey, opts)
	if err != nil {
		return nil, nil, err
	}
	return &NativeAPI{c}, &DataAccessAPI{c}, nil
}

func newClient(ctx context.Context, baseURL, apiKey string, opts types.Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing dataverse_url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("dataverse_url %q must be an http or https URL", baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{
		Timeout:       timeout,
		CheckRedirect: stripKeyOffHost(u.Host),
	}

	c := &Client{
		baseURL:    u,
		httpClient: httpClient,
		userAgent:  opts.UserAgent,
		apiKey:     apiKey,
		maxRetries: opts.MaxRetries,
	}

	if apiKey != "" && opts.AuthScheme == types.AuthBearer {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{})
		authorized := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: apiKey,
			TokenType:   "Bearer",
		}))
		httpClient.Transport = hostScoped{
			host:  u.Host,
			auth:  authorized.Transport,
			plain: http.DefaultTransport,
		}
		c.bearer = true
	}
	return c, nil
}

// stripKeyOffHost drops the X-Dataverse-key header when a redirect leaves
// host. File downloads are often redirected to object storage.
func stripKeyOffHost(host string) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		if req.URL.Host != host {
			req.Header.Del(keyHeader)
		}
		return nil
	}
}

// hostScoped sends requests for host through auth and all others through
// plain, so a bearer token never follows a redirect to another host.
type hostScoped struct {
	host  string
	auth  http.RoundTripper
	plain http.RoundTripper
}

func (t hostScoped) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host == t.host {
		return t.auth.RoundTrip(req)
	}
	return t.plain.RoundTrip(req)
}

// newRequest builds a GET request for the API path below the base URL.
func (c *Client) newRequest(ctx context.Context, query url.Values, elem ...string) (*http.Request, error) {
	u := c.baseURL.JoinPath(elem...)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" && !c.bearer {
		req.Header.Set(keyHeader, c.apiKey)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", req.URL.Redacted(), err)
	}
	return resp, nil
}
