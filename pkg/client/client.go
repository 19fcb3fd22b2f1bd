// Package client builds the HTTP client shared by every request in a run:
// one cookie jar, a browser-like User-Agent, and an optional uniform proxy.
package client

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// defaultTransport is a tuned HTTP transport reused across clients.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	ForceAttemptHTTP2:     true,
	// The API layer negotiates and decodes Content-Encoding itself.
	DisableCompression: true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	ProxyURL  string
}

// Client wraps http.Client with the shared cookie jar and default headers.
// The jar is written during login and only read afterwards, so concurrent
// fetch tasks can share one Client safely.
type Client struct {
	HTTPClient *http.Client
	Jar        http.CookieJar
	UserAgent  string
}

// New creates a new Client with a tuned Transport and default timeout.
func New() (*Client, error) {
	return NewWith(Config{})
}

// NewWith creates a new client with provided config. Zero values use defaults.
func NewWith(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgentValue
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		proxyFunc, err := proxyFromURLString(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		tr.Proxy = proxyFunc
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
			Jar:       jar,
		},
		Jar:       jar,
		UserAgent: ua,
	}, nil
}

// StreamClient returns a client sharing the jar and transport but without
// the overall request timeout, for long-running media transfers. Callers
// bound those with a context deadline instead.
func (c *Client) StreamClient() *http.Client {
	return &http.Client{
		Transport: c.HTTPClient.Transport,
		Jar:       c.Jar,
	}
}

// Cookie returns the value of the named cookie stored for u, matching the
// name case-insensitively the way the platform's cookie names require.
func (c *Client) Cookie(u *url.URL, name string) (string, bool) {
	for _, ck := range c.Jar.Cookies(u) {
		if strings.EqualFold(ck.Name, name) {
			return ck.Value, true
		}
	}
	return "", false
}

// proxyFromURLString parses a proxy URL and returns a Proxy function.
func proxyFromURLString(raw string) (func(*http.Request) (*url.URL, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return http.ProxyURL(u), nil
}
