// internal/tasks/profile/analyze-github-profile/scan.go
package analyzegithubprofile

import (
	"context"
	"fmt"

	"recruit-intake/internal/common/github"
	"recruit-intake/internal/common/metrics"
	"recruit-intake/internal/models"
)

// scan folds over at most limit repositories. Forks are skipped, flags are
// sticky, and probe failures count as absence. A listing failure or an
// expired context fails the whole scan; a truncated scan is never scored.
func (h *Handler) scan(ctx context.Context, username string) (*models.RepositoryScan, error) {
	result := &models.RepositoryScan{}

	for repo, err := range h.directory.Repositories(ctx, username, h.config.RepoScanLimit) {
		if err != nil {
			return nil, err
		}
		if err := interrupted(ctx); err != nil {
			return nil, err
		}
		if repo.Fork {
			continue
		}

		result.ReposScanned++
		metrics.ReposScanned.Inc()

		if h.hasAIToolMarker(ctx, repo) {
			result.AIToolMarkerCount++
		}

		if !result.HasCICD && h.probe(ctx, repo, workflowsPath, "ci_cd") {
			result.HasCICD = true
		}

		if !result.HasTests {
			for _, dir := range testDirs {
				if h.probe(ctx, repo, dir, "tests") {
					result.HasTests = true
					break
				}
			}
		}

		result.TotalStars += repo.Stars
		if repo.Stars > highStarThreshold {
			result.HighStarRepoCount++
		}
		// calls for this repository may have failed on the deadline
		if err := interrupted(ctx); err != nil {
			return nil, err
		}
	}

	if err := interrupted(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repository scan interrupted: %w", err)
	}
	return nil
}

func (h *Handler) hasAIToolMarker(ctx context.Context, repo github.Repository) bool {
	entries, err := h.directory.ListRootEntries(ctx, repo.Owner, repo.Name)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		metrics.ProbeFailures.WithLabelValues("root_entries").Inc()
		h.logger.Debug("root listing failed, treating as no marker", map[string]interface{}{
			"repo":  repo.Name,
			"error": err.Error(),
		})
		return false
	}
	for _, name := range entries {
		if _, ok := aiToolMarkers[name]; ok {
			return true
		}
	}
	return false
}

func (h *Handler) probe(ctx context.Context, repo github.Repository, path, kind string) bool {
	ok, err := h.directory.PathExists(ctx, repo.Owner, repo.Name, path)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		metrics.ProbeFailures.WithLabelValues(kind).Inc()
		h.logger.Debug("probe failed, treating as absent", map[string]interface{}{
			"repo":  repo.Name,
			"path":  path,
			"error": err.Error(),
		})
		return false
	}
	return ok
}
