// ABOUTME: Configuration for the wallet CLI
// ABOUTME: Viper-backed loader with defaults, optional file, and env overrides

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Keystore KeystoreConfig `mapstructure:"keystore"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KeystoreConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from an optional YAML file and the environment.
// Precedence: environment (PAPAYAL_*) over file over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("keystore.dir", defaultKeystoreDir())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix("papayal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		return nil, errors.New("api.base_url must not be empty")
	}
	return &cfg, nil
}

func defaultKeystoreDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "papayal")
	}
	return ".papayal"
}
