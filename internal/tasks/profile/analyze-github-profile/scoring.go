// internal/tasks/profile/analyze-github-profile/scoring.go
package analyzegithubprofile

import "recruit-intake/internal/models"

// Score turns profile metrics into the weighted breakdown. TotalScore is
// always the sum of the five sub-scores.
func Score(m models.ProfileMetrics) models.ScoreBreakdown {
	var b models.ScoreBreakdown

	b.GenAIScore = min(m.AIToolMarkerCount*10, models.MaxGenAIScore)

	// stars beyond 10 only count through the high-star bonus
	b.OSSScore = min(m.HighStarRepoCount*5+min(m.TotalStars, 10), models.MaxOSSScore)

	b.ProjectsScore = min(m.PublicRepoCount, models.MaxProjectsScore)

	b.ActivityScore = 3
	if m.PublicRepoCount > 10 {
		b.ActivityScore = 5
	}

	// everyone starts from 1
	prod := 1
	if m.HasCICD {
		prod += 2
	}
	if m.HasTests {
		prod += 2
	}
	b.ProdScore = min(prod, models.MaxProdScore)

	b.TotalScore = b.GenAIScore + b.OSSScore + b.ProjectsScore + b.ActivityScore + b.ProdScore
	return b
}
