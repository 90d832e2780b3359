package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://127.0.0.1:0",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "postr-test/1.0",
			Retries:     1,
		},
		Source: SourceConfig{Kind: SourceREST},
		Cache: CacheConfig{
			Path:    "", // caching disabled
			TTL:     time.Minute,
			Timeout: 1 * time.Second,
		},
		List: ListConfig{
			PageSize:       5,
			MaxPageButtons: 5,
			SearchDebounce: 300 * time.Millisecond,
			ClampPage:      true,
		},
		UI:   defaultConfig().UI,
		Keys: defaultConfig().Keys,
		Log:  LogConfig{Level: "off"},
	}
}
