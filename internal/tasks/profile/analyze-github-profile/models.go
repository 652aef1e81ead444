// internal/tasks/profile/analyze-github-profile/models.go
package analyzegithubprofile

import (
	"context"
	"iter"

	"recruit-intake/internal/common/github"
	"recruit-intake/internal/models"
)

type Input struct {
	Username string `json:"username"`
}

type Output struct {
	Username  string                `json:"username"`
	Metrics   models.ProfileMetrics `json:"metrics"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	FromCache bool                  `json:"fromCache"`
}

// AccountDirectory is the read-only account and repository source.
type AccountDirectory interface {
	GetAccount(ctx context.Context, username string) (*github.Account, error)
	Repositories(ctx context.Context, username string, limit int) iter.Seq2[github.Repository, error]
	ListRootEntries(ctx context.Context, owner, repo string) ([]string, error)
	PathExists(ctx context.Context, owner, repo, path string) (bool, error)
}

// ScanCache stores repository scans outside the analysis itself.
type ScanCache interface {
	Get(ctx context.Context, username string) (*models.RepositoryScan, bool, error)
	Put(ctx context.Context, username string, scan *models.RepositoryScan) error
}

const (
	DefaultRepoScanLimit = 30
	highStarThreshold    = 10
	workflowsPath        = ".github/workflows"
)

// root entries that indicate AI-assisted development tooling
var aiToolMarkers = map[string]struct{}{
	".cursorrules": {},
	".claude":      {},
	".copilot":     {},
	"cursor.json":  {},
}

var testDirs = []string{"test", "tests", "__tests__", "spec"}
