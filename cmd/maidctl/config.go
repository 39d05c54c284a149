package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
)

type settings struct {
	Server  string        `mapstructure:"server"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Verbose bool          `mapstructure:"verbose"`

	MetricsAddr string `mapstructure:"metrics-addr"`
}

// initConfig layers flags over MAIDCTL_* variables over the config file.
func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix("MAIDCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", defaultServer)
	v.SetDefault("timeout", defaultTimeout)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.SetConfigFile(filepath.Join(home, ".maidctl.yaml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if configFile != "" {
				return fmt.Errorf("config file %s not found", configFile)
			}
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	if s.Token == "" {
		return s, errors.New("no token: pass --token or set MAIDCTL_TOKEN")
	}
	return s, nil
}
