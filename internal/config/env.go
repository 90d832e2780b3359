package config

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads .env files with priority: .env.local > .env.
// godotenv.Load does not overwrite variables that are already set, so the
// real environment always wins. Returns the files actually loaded.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// setDefaults registers every leaf of cfg as its own viper default so that
// partial config sections and POSTR_SECTION_KEY variables merge per key
// instead of replacing a whole section.
func setDefaults(v *viper.Viper, cfg *Config) error {
	raw, err := toMap(cfg)
	if err != nil {
		return err
	}
	setLeaves(v, "", raw)
	return nil
}

func setLeaves(v *viper.Viper, prefix string, m map[string]interface{}) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok {
			setLeaves(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// toMap flattens a config section into tag-keyed maps for writing.
func toMap(section interface{}) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := mapstructure.Decode(section, &raw); err != nil {
		return nil, fmt.Errorf("encoding config section: %w", err)
	}
	return raw, nil
}
