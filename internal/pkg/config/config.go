package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIBaseURL is the REST entry point of the task backend.
	APIBaseURL string `env:"TASKDECK_API_URL, default=http://localhost:8000"`
	// WSURL is the push endpoint. Empty derives ws(s)://<api-host>/ws.
	WSURL    string `env:"TASKDECK_WS_URL"`
	Env      string `env:"TASKDECK_ENV,       default=development"`
	LogLevel string `env:"TASKDECK_LOG_LEVEL, default=info"`
	// CredentialsFile overrides where the session credential is persisted.
	CredentialsFile string `env:"TASKDECK_CREDENTIALS_FILE"`
	// HTTPTimeout bounds every gateway call.
	HTTPTimeout time.Duration `env:"TASKDECK_HTTP_TIMEOUT, default=15s"`
	// UnreadPollInterval is the fallback refresh cadence for the unread
	// count when push delivery goes quiet. 0 disables polling.
	UnreadPollInterval time.Duration `env:"TASKDECK_UNREAD_POLL, default=60s"`
	// MetricsAddr is where the watch command serves /metrics. Empty disables.
	MetricsAddr string `env:"TASKDECK_METRICS_ADDR, default=127.0.0.1:9180"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// CredentialsPath resolves the credential file location, defaulting to
// ~/.config/taskdeck/credentials.json.
func (c *Config) CredentialsPath() (string, error) {
	if c.CredentialsFile != "" {
		return c.CredentialsFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "taskdeck", "credentials.json"), nil
}
