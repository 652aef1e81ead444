// internal/tasks/profile/analyze-github-profile/config.go
package analyzegithubprofile

import (
	"time"

	"recruit-intake/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	RepoScanLimit int
}

// LoadConfig reads the github and task sections of cfg; a nil cfg yields
// defaults.
func LoadConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{
			Timeout:       60 * time.Second,
			RepoScanLimit: DefaultRepoScanLimit,
		}
	}

	limit := cfg.GitHub.RepoScanLimit
	if limit <= 0 {
		limit = DefaultRepoScanLimit
	}
	return &Config{
		Timeout:       config.GetDuration(config.GetTaskConfig(cfg, TaskType).Timeout),
		RepoScanLimit: limit,
	}
}
