// internal/tasks/application/write-scorecard/models.go
package writescorecard

import (
	"time"

	"recruit-intake/internal/models"
)

// Input describes one scorecard. Root and Year fall back to the task config
// and GeneratedAt to the current time when zero.
type Input struct {
	Username    string                `json:"username"`
	Breakdown   models.ScoreBreakdown `json:"breakdown"`
	Year        int                   `json:"year,omitempty"`
	Root        string                `json:"root,omitempty"`
	GeneratedAt time.Time             `json:"generatedAt,omitempty"`
}

type Output struct {
	Path      string            `json:"path"`
	Scorecard *models.Scorecard `json:"scorecard"`
}
