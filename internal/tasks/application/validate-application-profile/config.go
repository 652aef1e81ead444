// internal/tasks/application/validate-application-profile/config.go
package validateapplicationprofile

import (
	"time"

	"recruit-intake/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig reads the task section of cfg; a nil cfg yields defaults.
func LoadConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return &Config{Timeout: 10 * time.Second}
	}
	return &Config{
		Timeout: config.GetDuration(config.GetTaskConfig(cfg, TaskType).Timeout),
	}
}
