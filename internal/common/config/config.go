// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig             `mapstructure:"app"`
	GitHub       GitHubConfig          `mapstructure:"github"`
	Cache        CacheConfig           `mapstructure:"cache"`
	Applications ApplicationsConfig    `mapstructure:"applications"`
	Logging      LoggingConfig         `mapstructure:"logging"`
	Metrics      MetricsConfig         `mapstructure:"metrics"`
	Tasks        map[string]TaskConfig `mapstructure:"tasks"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// GitHubConfig holds settings for the account directory client.
type GitHubConfig struct {
	Token             string  `mapstructure:"token"`
	BaseURL           string  `mapstructure:"base_url"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	RepoScanLimit     int     `mapstructure:"repo_scan_limit"`
	UserAgent         string  `mapstructure:"user_agent"`
}

// CacheConfig holds settings for the optional Redis scan cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
	// AsOfGranularity truncates the scan timestamp used in cache keys:
	// "day" or "hour".
	AsOfGranularity string `mapstructure:"as_of_granularity"`
}

// GetAddr returns the Redis address with the default port applied.
func (c CacheConfig) GetAddr() string {
	if c.Address == "" {
		return fmt.Sprintf("localhost:%d", 6379)
	}
	return c.Address
}

// ApplicationsConfig locates the application tree in the repository checkout.
type ApplicationsConfig struct {
	Root string `mapstructure:"root"`
	Year int    `mapstructure:"year"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the end-of-run push to a Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// TaskConfig holds the core settings applicable to every task.
type TaskConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}
