package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	ERPBaseURL string `envconfig:"ERP_BASE_URL" required:"true"`
	ERPAPIKey  string `envconfig:"ERP_API_KEY"`

	MasterdataBaseURL string `envconfig:"MASTERDATA_BASE_URL"`
	MasterdataAPIKey  string `envconfig:"MASTERDATA_API_KEY"`

	DocTypesPath string `envconfig:"DOC_TYPES_PATH"`

	CatalogTTL      time.Duration `envconfig:"CATALOG_TTL" default:"10m"`
	DraftTTL        time.Duration `envconfig:"DRAFT_TTL" default:"72h"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ERPBaseURL == "" {
		return nil, errors.New("erp base url must be provided")
	}
	if cfg.MasterdataBaseURL == "" {
		// Most deployments serve documents and master data from one host.
		cfg.MasterdataBaseURL = cfg.ERPBaseURL
	}
	if cfg.MasterdataAPIKey == "" {
		cfg.MasterdataAPIKey = cfg.ERPAPIKey
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
