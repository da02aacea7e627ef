package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ClientConfig drives the cvnova terminal client.
type ClientConfig struct {
	APIURL        string        `mapstructure:"api_url"`
	TokenFile     string        `mapstructure:"token_file"`
	AutosaveDelay time.Duration `mapstructure:"autosave_delay"`
	Verbose       bool          `mapstructure:"verbose"`
}

func LoadClientConfig() (ClientConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CVNOVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:8080/make-server-a189b8f6")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("autosave_delay", 2*time.Second)
	v.SetDefault("verbose", false)

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ClientConfig{}, err
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cvnova_session")
	}
	return filepath.Join(dir, "cvnova", "session.json")
}
