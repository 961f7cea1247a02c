// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Training TrainingConfig `toml:"training"`
	Log      LogConfig      `toml:"log"`
}

// TrainingConfig maps drill-related settings.
type TrainingConfig struct {
	ReadSeconds   *int    `toml:"read-seconds"`
	VerifySeconds *int    `toml:"verify-seconds"`
	FinalSeconds  *int    `toml:"final-seconds"`
	RestSeconds   *int    `toml:"rest-seconds"`
	MaxCycles     *int    `toml:"max-cycles"`
	Corpus        *string `toml:"corpus"`
	DB            *string `toml:"db"`
}

// LogConfig maps diagnostic log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written when the config command creates a new file.
const Template = `# tuiread configuration

[training]
# read-seconds = 2
# verify-seconds = 4
# final-seconds = 4
# rest-seconds = 600
# max-cycles = 25
# corpus = "/path/to/corpus.toml"
# db = "/path/to/tuiread.db"

[log]
# level = "info"
# file = "/path/to/tuiread.log"
`
