// internal/tasks/profile/analyze-github-profile/handler.go
package analyzegithubprofile

import (
	"context"
	"fmt"
	"time"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/common/metrics"
	"recruit-intake/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TaskType   = "analyze-github-profile"
	tracerName = "recruit-intake/analyze-github-profile"
)

type Handler struct {
	config    *Config
	directory AccountDirectory
	cache     ScanCache
	now       func() time.Time
	logger    logger.Logger
}

// NewHandler wires the analyzer. cache may be nil.
func NewHandler(config *Config, directory AccountDirectory, cache ScanCache, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		directory: directory,
		cache:     cache,
		now:       time.Now,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute returns a complete breakdown or an error. A missing account is
// ACCOUNT_NOT_FOUND and never a zero score.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, TaskType,
		trace.WithAttributes(attribute.String("github.username", input.Username)))
	defer span.End()
	defer func() {
		metrics.TaskRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	output, err := h.execute(ctx, input)
	if err != nil {
		stdErr := errors.Normalize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.TaskRunsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.logger.Error("analysis failed", stdErr.ToFields())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("intake.public_repo_count", output.Metrics.PublicRepoCount),
		attribute.Int("intake.ai_tool_marker_count", output.Metrics.AIToolMarkerCount),
		attribute.Int("intake.high_star_repo_count", output.Metrics.HighStarRepoCount),
		attribute.Int("intake.total_stars", output.Metrics.TotalStars),
		attribute.Bool("intake.has_ci_cd", output.Metrics.HasCICD),
		attribute.Bool("intake.has_tests", output.Metrics.HasTests),
		attribute.Int("intake.total_score", output.Breakdown.TotalScore),
		attribute.Bool("intake.scan_cached", output.FromCache),
	)
	metrics.TaskRunsCompleted.WithLabelValues(TaskType).Inc()
	observeScores(output.Breakdown)

	return output, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Username == "" {
		return nil, errors.NewAccountNotFoundError(input.Username)
	}

	account, err := h.directory.GetAccount(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	scan, fromCache := h.cachedScan(ctx, input.Username)
	if scan == nil {
		scan, err = h.scan(ctx, input.Username)
		if err != nil {
			return nil, fmt.Errorf("scan repositories of %s: %w", input.Username, err)
		}
		scan.ScannedAt = h.now().UTC()
		h.storeScan(ctx, input.Username, scan)
	}

	profileMetrics := models.ProfileMetrics{
		RepositoryScan:  *scan,
		PublicRepoCount: account.PublicRepos,
	}
	breakdown := Score(profileMetrics)

	h.logger.Info("analysis completed", map[string]interface{}{
		"username":     input.Username,
		"reposScanned": scan.ReposScanned,
		"fromCache":    fromCache,
		"totalScore":   breakdown.TotalScore,
	})

	return &Output{
		Username:  input.Username,
		Metrics:   profileMetrics,
		Breakdown: breakdown,
		FromCache: fromCache,
	}, nil
}

// cachedScan never fails the analysis; an unreachable cache means rescanning.
func (h *Handler) cachedScan(ctx context.Context, username string) (*models.RepositoryScan, bool) {
	if h.cache == nil {
		return nil, false
	}
	scan, ok, err := h.cache.Get(ctx, username)
	if err != nil {
		h.logger.Warn("scan cache lookup failed", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return scan, true
}

func (h *Handler) storeScan(ctx context.Context, username string, scan *models.RepositoryScan) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Put(ctx, username, scan); err != nil {
		h.logger.Warn("scan cache store failed", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
	}
}

func observeScores(b models.ScoreBreakdown) {
	metrics.Scores.WithLabelValues("genai").Observe(float64(b.GenAIScore))
	metrics.Scores.WithLabelValues("oss").Observe(float64(b.OSSScore))
	metrics.Scores.WithLabelValues("projects").Observe(float64(b.ProjectsScore))
	metrics.Scores.WithLabelValues("activity").Observe(float64(b.ActivityScore))
	metrics.Scores.WithLabelValues("prod").Observe(float64(b.ProdScore))
	metrics.Scores.WithLabelValues("total").Observe(float64(b.TotalScore))
}
