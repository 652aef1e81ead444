// internal/models/scorecard.go
package models

import "time"

// Sub-score caps. TotalScore is bounded by their sum.
const (
	MaxGenAIScore    = 50
	MaxOSSScore      = 30
	MaxProjectsScore = 10
	MaxActivityScore = 5
	MaxProdScore     = 5
	MaxTotalScore    = MaxGenAIScore + MaxOSSScore + MaxProjectsScore + MaxActivityScore + MaxProdScore
)

// RepositoryScan is what the bounded repository scan collects. It is the
// unit the scan cache stores.
type RepositoryScan struct {
	AIToolMarkerCount int       `json:"ai_tool_marker_count"`
	HighStarRepoCount int       `json:"high_star_repo_count"`
	TotalStars        int       `json:"total_stars"`
	HasCICD           bool      `json:"has_ci_cd"`
	HasTests          bool      `json:"has_tests"`
	ReposScanned      int       `json:"repos_scanned"`
	ScannedAt         time.Time `json:"scanned_at"`
}

// ProfileMetrics combines the repository scan with the account's declared
// public repository count.
type ProfileMetrics struct {
	RepositoryScan
	PublicRepoCount int `json:"public_repo_count"`
}

type ScoreBreakdown struct {
	GenAIScore    int `json:"genai_score"`
	OSSScore      int `json:"oss_score"`
	ProjectsScore int `json:"projects_score"`
	ActivityScore int `json:"activity_score"`
	ProdScore     int `json:"prod_score"`
	TotalScore    int `json:"total_score"`
}

// Scorecard is the persisted record: {"scores": {...}}.
type Scorecard struct {
	Scores ScorecardScores `json:"scores"`
}

type ScorecardScores struct {
	ScoreBreakdown
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// NewScorecard stamps a breakdown with the username and an RFC 3339 UTC time.
func NewScorecard(username string, breakdown ScoreBreakdown, generatedAt time.Time) *Scorecard {
	return &Scorecard{
		Scores: ScorecardScores{
			ScoreBreakdown: breakdown,
			Username:       username,
			Timestamp:      generatedAt.UTC().Format(time.RFC3339),
		},
	}
}
