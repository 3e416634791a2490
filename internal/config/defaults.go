package config

const (
	defaultListFile            = "~/urls.txt"
	defaultDataDir             = "~/.local/share/urldeck"
	defaultLogDir              = "~/.local/share/urldeck/logs"
	defaultIconDir             = "~/.local/share/urldeck/icons"
	defaultListFormat          = ListFormatPairs
	defaultFetchTimeoutSeconds = 5
	defaultUserAgent           = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	defaultMaxRedirects        = 10
	defaultMaxBytes            = 1 << 20
	defaultLookupServiceURL    = "https://www.google.com/s2/favicons"
	defaultLookupSize          = 32
	defaultPlaceholderSize     = 32
	defaultCacheTTLHours       = 168
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	maxPlaceholderSize         = 512
	maxFetchTimeoutSeconds     = 300
	maxRedirectsLimit          = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ListFile: defaultListFile,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			IconDir:  defaultIconDir,
		},
		List: List{
			Format: defaultListFormat,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			UserAgent:      defaultUserAgent,
			MaxRedirects:   defaultMaxRedirects,
			MaxBytes:       defaultMaxBytes,
		},
		Resolver: Resolver{
			LookupServiceURL: defaultLookupServiceURL,
			LookupSize:       defaultLookupSize,
		},
		Enrich: Enrich{
			PlaceholderSize: defaultPlaceholderSize,
		},
		Cache: Cache{
			Enabled:  true,
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
