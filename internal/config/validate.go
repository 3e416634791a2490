package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateList(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateEnrich(); err != nil {
		return err
	}
	if c.Cache.TTLHours < 0 {
		return errors.New("cache.ttl_hours must be zero or positive")
	}
	return c.validateLogging()
}

func (c *Config) validateList() error {
	switch c.List.Format {
	case ListFormatPairs, ListFormatLines:
		return nil
	default:
		return fmt.Errorf("list.format: unsupported value %q (want %q or %q)", c.List.Format, ListFormatPairs, ListFormatLines)
	}
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds > maxFetchTimeoutSeconds {
		return fmt.Errorf("fetch.timeout_seconds must be at most %d", maxFetchTimeoutSeconds)
	}
	if c.Fetch.MaxRedirects > maxRedirectsLimit {
		return fmt.Errorf("fetch.max_redirects must be at most %d", maxRedirectsLimit)
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.DisableLookupService {
		return nil
	}
	parsed, err := url.Parse(c.Resolver.LookupServiceURL)
	if err != nil {
		return fmt.Errorf("resolver.lookup_service_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("resolver.lookup_service_url must use http or https, got %q", c.Resolver.LookupServiceURL)
	}
	if parsed.Host == "" {
		return errors.New("resolver.lookup_service_url must include a host")
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if c.Enrich.PlaceholderSize > maxPlaceholderSize {
		return fmt.Errorf("enrich.placeholder_size must be at most %d", maxPlaceholderSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
