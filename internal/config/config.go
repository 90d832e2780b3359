package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceREST = "rest"
	SourceFeed = "feed"
)

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Source SourceConfig `mapstructure:"source"`
	Cache  CacheConfig  `mapstructure:"cache"`
	List   ListConfig   `mapstructure:"list"`
	UI     UIConfig     `mapstructure:"ui"`
	Keys   KeyConfig    `mapstructure:"keys"`
	Log    LogConfig    `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	Retries     int           `mapstructure:"retries"`
}

type SourceConfig struct {
	Kind    string `mapstructure:"kind"`
	FeedURL string `mapstructure:"feed_url"`
}

// CacheConfig controls the on-disk query cache. An empty Path disables it.
type CacheConfig struct {
	Path        string        `mapstructure:"path"`
	TTL         time.Duration `mapstructure:"ttl"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type ListConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	MaxPageButtons int           `mapstructure:"max_page_buttons"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	ClampPage      bool          `mapstructure:"clamp_page"`
	RefilterOnAdd  bool          `mapstructure:"refilter_on_add"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
	Opener string       `mapstructure:"opener"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	MaxPreviewLength int `mapstructure:"max_preview_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit        string `mapstructure:"quit"`
	Search      string `mapstructure:"search"`
	NewPost     string `mapstructure:"new_post"`
	DeletePost  string `mapstructure:"delete_post"`
	UserFilter  string `mapstructure:"user_filter"`
	Users       string `mapstructure:"users"`
	Refresh     string `mapstructure:"refresh"`
	OpenWebsite string `mapstructure:"open_website"`
	Back        string `mapstructure:"back"`
	Help        string `mapstructure:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	cachePath := filepath.Join(homeDir, ".postr", "cache.db")
	searchIndexPath := filepath.Join(homeDir, ".postr", "index.bleve")

	return &Config{
		API: APIConfig{
			BaseURL:     "https://jsonplaceholder.typicode.com",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "postr/1.0 (https://github.com/pders01/postr)",
			Retries:     3,
		},
		Source: SourceConfig{
			Kind: SourceREST,
		},
		Cache: CacheConfig{
			Path:        cachePath,
			TTL:         5 * time.Minute,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		List: ListConfig{
			PageSize:       5,
			MaxPageButtons: 5,
			SearchDebounce: 300 * time.Millisecond,
			ClampPage:      true,
			RefilterOnAdd:  false,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				MaxPreviewLength: 80,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
			Opener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:        "q",
				Search:      "s",
				NewPost:     "n",
				DeletePost:  "x",
				UserFilter:  "f",
				Users:       "u",
				Refresh:     "r",
				OpenWebsite: "o",
				Back:        "esc",
				Help:        "?",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".postr", "postr.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Load reads defaults, then the TOML config file, then .env files and
// POSTR_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	LoadDotEnv()

	v := viper.New()

	if err := setDefaults(v, defaultConfig()); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "postr")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("POSTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the list logic cannot work with.
func (c *Config) Validate() error {
	if c.List.PageSize < 1 {
		return fmt.Errorf("list.page_size must be at least 1, got %d", c.List.PageSize)
	}
	if c.List.MaxPageButtons < 1 {
		return fmt.Errorf("list.max_page_buttons must be at least 1, got %d", c.List.MaxPageButtons)
	}
	if c.List.SearchDebounce < 0 {
		return fmt.Errorf("list.search_debounce cannot be negative")
	}
	switch c.Source.Kind {
	case SourceREST:
	case SourceFeed:
		if c.Source.FeedURL == "" {
			return fmt.Errorf("source.feed_url is required when source.kind is %q", SourceFeed)
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Cache.SearchIndex = expandPath(cfg.Cache.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings keep the TOML readable.
	apiCfg := map[string]interface{}{
		"base_url":     config.API.BaseURL,
		"http_timeout": config.API.HTTPTimeout.String(),
		"user_agent":   config.API.UserAgent,
		"retries":      config.API.Retries,
	}

	cacheCfg := map[string]interface{}{
		"path":         config.Cache.Path,
		"ttl":          config.Cache.TTL.String(),
		"timeout":      config.Cache.Timeout.String(),
		"search_index": config.Cache.SearchIndex,
	}

	listCfg := map[string]interface{}{
		"page_size":        config.List.PageSize,
		"max_page_buttons": config.List.MaxPageButtons,
		"search_debounce":  config.List.SearchDebounce.String(),
		"clamp_page":       config.List.ClampPage,
		"refilter_on_add":  config.List.RefilterOnAdd,
	}

	v.Set("api", apiCfg)
	v.Set("source", map[string]interface{}{
		"kind":     config.Source.Kind,
		"feed_url": config.Source.FeedURL,
	})
	v.Set("cache", cacheCfg)
	v.Set("list", listCfg)
	uiCfg, err := toMap(config.UI)
	if err != nil {
		return err
	}
	keysCfg, err := toMap(config.Keys)
	if err != nil {
		return err
	}
	v.Set("ui", uiCfg)
	v.Set("keys", keysCfg)
	v.Set("log", map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
