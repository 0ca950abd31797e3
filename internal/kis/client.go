package kis

import (
	"net/http"
)

const baseURL = "https://openapi.koreainvestment.com:9443"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=kis_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Korea Investment & Securities OpenAPI.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// appKey and appSecret identify the registered application.
	appKey    string
	appSecret string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the KIS API client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new KIS API client. Empty credentials are allowed;
// calls that need them fail with ErrMissingSecrets.
func NewClient(appKey, appSecret string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		appKey:     appKey,
		appSecret:  appSecret,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Configured reports whether both the app key and secret are set.
func (c *Client) Configured() bool { return c.appKey != "" && c.appSecret != "" }
