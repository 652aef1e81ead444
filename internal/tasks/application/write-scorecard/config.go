// internal/tasks/application/write-scorecard/config.go
package writescorecard

import (
	"time"

	"recruit-intake/internal/common/config"
)

type Config struct {
	Root    string
	Year    int
	Timeout time.Duration
}

// LoadConfig reads the applications and task sections of cfg; a nil cfg
// yields defaults.
func LoadConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{
			Root:    "applications",
			Year:    time.Now().UTC().Year(),
			Timeout: 10 * time.Second,
		}
	}
	return &Config{
		Root:    cfg.Applications.Root,
		Year:    cfg.Applications.Year,
		Timeout: config.GetDuration(config.GetTaskConfig(cfg, TaskType).Timeout),
	}
}
