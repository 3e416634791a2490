package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"urldeck/internal/config"
	"urldeck/internal/icon"
)

// ErrFetchFailed is the uniform failure for a single attempt.
var ErrFetchFailed = errors.New("icon fetch failed")

// Defaults applied to zero Config fields.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	DefaultMaxRedirects = 10
	DefaultMaxBytes     = 1 << 20
)

// Config configures a Client.
type Config struct {
	Timeout      time.Duration
	UserAgent    string
	MaxRedirects int
	// MaxBytes caps the body read. Larger bodies fail.
	MaxBytes int64
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
}

// ConfigFrom maps the [fetch] section of the application config.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Timeout:      cfg.FetchTimeout(),
		UserAgent:    cfg.Fetch.UserAgent,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		MaxBytes:     cfg.Fetch.MaxBytes,
	}
}

// Client fetches icons.
type Client struct {
	http   *http.Client
	config Config
}

// New creates a Client.
func New(cfg Config) *Client {
	cfg.defaults()
	maxRedirects := cfg.MaxRedirects
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch performs one attempt against target.
func (c *Client) Fetch(ctx context.Context, target string) (icon.Icon, error) {
	data, err := c.get(ctx, target)
	if err != nil {
		return icon.Icon{}, fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, err)
	}
	ic, err := icon.Decode(data)
	if err != nil {
		return icon.Icon{}, fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, err)
	}
	return ic, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.config.MaxBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", c.config.MaxBytes)
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}
