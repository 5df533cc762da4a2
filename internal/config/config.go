package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIToken string `yaml:"-"` // from IDENTIFY_API_TOKEN env

	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	HTTP struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"http"`

	Providers ProvidersConfig `yaml:"providers"`

	Audit struct {
		Enabled       bool   `yaml:"enabled"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"audit"`

	OnePassword OnePasswordConfig `yaml:"onepassword"`

	Tracing TracingConfig `yaml:"tracing"`
}

type ProvidersConfig struct {
	Gravatar struct {
		ProfileURL              string   `yaml:"profile_url"`
		AvatarURL               string   `yaml:"avatar_url"`
		ImageSize               int      `yaml:"image_size"`
		PlaceholderFingerprints []string `yaml:"placeholder_fingerprints"`
	} `yaml:"gravatar"`

	Google struct {
		BaseURL   string `yaml:"base_url"`
		ImageSize int    `yaml:"image_size"`
	} `yaml:"google"`

	GooglePlus struct {
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"` // plain key or op://vault/item/field
		ImageSuffix string `yaml:"image_suffix"`
	} `yaml:"google_plus"`
}

// OnePasswordConfig selects where op:// references in the config are resolved.
// Connect takes precedence over a service account when both are set.
type OnePasswordConfig struct {
	ConnectURL          string `yaml:"connect_url"`
	ConnectToken        string `yaml:"connect_token"`
	ServiceAccountToken string `yaml:"-"` // from OP_SERVICE_ACCOUNT_TOKEN env
}

// TracingConfig selects the span exporter for outbound provider fetches.
// An empty Exporter disables tracing.
type TracingConfig struct {
	Exporter    string `yaml:"exporter"` // "", "stdout" or "otlp"
	Endpoint    string `yaml:"endpoint"` // OTLP/HTTP URL; falls back to OTEL_EXPORTER_OTLP_ENDPOINT
	ServiceName string `yaml:"service_name"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Defaults
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8766
	cfg.Log.Level = "info"
	cfg.HTTP.TimeoutSeconds = 10
	cfg.Audit.Path = "/data/lookups.log"
	cfg.Audit.RetentionDays = 30
	cfg.Tracing.ServiceName = "identify"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Env overrides
	if v := os.Getenv("IDENTIFY_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("IDENTIFY_GOOGLE_PLUS_KEY"); v != "" {
		cfg.Providers.GooglePlus.APIKey = v
	}
	if v := os.Getenv("IDENTIFY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("IDENTIFY_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
		cfg.Audit.Enabled = true
	}
	if v := os.Getenv("IDENTIFY_TRACING_EXPORTER"); v != "" {
		cfg.Tracing.Exporter = v
	}
	if v := os.Getenv("OP_SERVICE_ACCOUNT_TOKEN"); v != "" {
		cfg.OnePassword.ServiceAccountToken = v
	}
	if v := os.Getenv("OP_CONNECT_SERVER_URL"); v != "" {
		cfg.OnePassword.ConnectURL = v
	}
	if v := os.Getenv("OP_CONNECT_TOKEN"); v != "" {
		cfg.OnePassword.ConnectToken = v
	}

	return cfg, nil
}
