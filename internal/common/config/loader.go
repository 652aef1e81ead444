// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml and the environment overlay
// config.<APP_ENVIRONMENT>.yaml. A missing base file is not an error: the
// CLI runs on defaults plus environment variables in CI.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// base config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// environment overlay
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory. Messages go to stderr because stdout carries command results.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Fprintf(os.Stderr, "loaded .env from: %s\n", path)
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.GitHub.Token == "" {
		for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
			if val := os.Getenv(name); val != "" {
				cfg.GitHub.Token = val
				break
			}
		}
	}

	if cfg.Cache.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Cache.Address = val
		}
	}
	if cfg.Cache.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Password = val
		}
	}

	if cfg.Metrics.PushgatewayURL == "" {
		if val := os.Getenv("PUSHGATEWAY_URL"); val != "" {
			cfg.Metrics.PushgatewayURL = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "recruit-intake"
	}

	// GitHub defaults
	if cfg.GitHub.Timeout == 0 {
		cfg.GitHub.Timeout = 60000
	}
	if cfg.GitHub.RequestsPerSecond == 0 {
		cfg.GitHub.RequestsPerSecond = 10
	}
	if cfg.GitHub.Burst == 0 {
		cfg.GitHub.Burst = 5
	}
	if cfg.GitHub.RepoScanLimit == 0 {
		cfg.GitHub.RepoScanLimit = 30
	}
	if cfg.GitHub.UserAgent == "" {
		cfg.GitHub.UserAgent = "recruit-intake"
	}

	// Cache defaults
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600
	}
	if cfg.Cache.AsOfGranularity == "" {
		cfg.Cache.AsOfGranularity = "day"
	}

	// Application tree defaults
	if cfg.Applications.Root == "" {
		cfg.Applications.Root = "applications"
	}
	if cfg.Applications.Year == 0 {
		cfg.Applications.Year = time.Now().UTC().Year()
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "recruit-intake"
	}

	for key, task := range cfg.Tasks {
		if task.Timeout == 0 {
			task.Timeout = 60000
		}
		cfg.Tasks[key] = task
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.GitHub.RepoScanLimit < 0 {
		return fmt.Errorf("github.repo_scan_limit must be positive")
	}
	if cfg.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("github.requests_per_second must not be negative")
	}

	if cfg.Cache.Enabled && cfg.Cache.Address == "" {
		return fmt.Errorf("cache.address is required when cache.enabled is true")
	}
	switch cfg.Cache.AsOfGranularity {
	case "day", "hour":
	default:
		return fmt.Errorf("cache.as_of_granularity must be 'day' or 'hour', got %q", cfg.Cache.AsOfGranularity)
	}

	if cfg.Logging.Output != "stdout" && cfg.Logging.Output != "stderr" && !filepath.IsAbs(cfg.Logging.Output) {
		return fmt.Errorf("logging.output must be stdout, stderr or an absolute path")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetTaskConfig retrieves task-specific configuration with fallback to defaults
func GetTaskConfig(cfg *Config, taskName string) TaskConfig {
	if task, exists := cfg.Tasks[taskName]; exists {
		return task
	}

	return TaskConfig{
		Enabled: true,
		Timeout: 60000,
	}
}

// IsTaskEnabled checks if a specific task is enabled
func IsTaskEnabled(cfg *Config, taskName string) bool {
	if task, exists := cfg.Tasks[taskName]; exists {
		return task.Enabled
	}
	return true
}
