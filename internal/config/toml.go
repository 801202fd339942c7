// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Server   ServerConfig   `toml:"server"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Poem     *string `toml:"poem"`
	APIURL   *string `toml:"api-url"`
	PageSize *int    `toml:"page-size"`
	LogFile  *string `toml:"log-file"`
}

// ServerConfig maps backend settings.
type ServerConfig struct {
	Addr     *string `toml:"addr"`
	DBDriver *string `toml:"db-driver"`
	DSN      *string `toml:"dsn"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// Keys the config does not know are rejected so that typos surface early.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return FileConfig{}, fmt.Errorf("failed to decode config %s:\n%s", path, perr.ErrorWithPosition())
		}
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config key %s", quoteJoin(keys))
	}
	return cfg, nil
}

func quoteJoin(keys []string) string {
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = strconv.Quote(key)
	}
	return strings.Join(quoted, ", ")
}
