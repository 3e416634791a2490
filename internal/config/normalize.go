package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeList()
	c.normalizeFetch()
	c.normalizeResolver()
	c.normalizeEnrich()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("URLDECK_LIST_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ListFile = strings.TrimSpace(value)
	}
	c.Paths.ListFile = strings.TrimSpace(c.Paths.ListFile)
	if c.Paths.ListFile == "" {
		c.Paths.ListFile = defaultListFile
	}

	// file:// URIs are resolved by the list loader; only plain paths are expanded here.
	var err error
	if !strings.HasPrefix(c.Paths.ListFile, "file://") {
		if c.Paths.ListFile, err = expandPath(c.Paths.ListFile); err != nil {
			return fmt.Errorf("paths.list_file: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.IconDir) == "" {
		c.Paths.IconDir = defaultIconDir
	}
	if c.Paths.IconDir, err = expandPath(strings.TrimSpace(c.Paths.IconDir)); err != nil {
		return fmt.Errorf("paths.icon_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeList() {
	c.List.Format = strings.ToLower(strings.TrimSpace(c.List.Format))
	if c.List.Format == "" {
		c.List.Format = defaultListFormat
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if value, ok := os.LookupEnv("URLDECK_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Fetch.UserAgent = value
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	if c.Fetch.MaxRedirects < 0 {
		c.Fetch.MaxRedirects = 0
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = defaultMaxBytes
	}
}

func (c *Config) normalizeResolver() {
	c.Resolver.LookupServiceURL = strings.TrimSpace(c.Resolver.LookupServiceURL)
	if c.Resolver.LookupServiceURL == "" {
		c.Resolver.LookupServiceURL = defaultLookupServiceURL
	}
	if c.Resolver.LookupSize <= 0 {
		c.Resolver.LookupSize = defaultLookupSize
	}
}

func (c *Config) normalizeEnrich() {
	if c.Enrich.MaxInFlight < 0 {
		c.Enrich.MaxInFlight = 0
	}
	if c.Enrich.PlaceholderSize <= 0 {
		c.Enrich.PlaceholderSize = defaultPlaceholderSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
