package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/akashi/internal/flagx"
	"gopkg.in/yaml.v3"
)

// parseFile overlays Config with values from the file named by -c/-config.
// The format follows the extension: .yaml/.yml is YAML, anything else JSON.
// Keys absent from the file leave the current values untouched.
//
// Panics on read or decode errors, like the other loaders.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	if err := decodeFile(path, cfg); err != nil {
		panic(err)
	}
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}
