// internal/tasks/application/write-scorecard/handler.go
package writescorecard

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/layout"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/common/metrics"
	"recruit-intake/internal/common/validation"
	"recruit-intake/internal/models"
)

const (
	TaskType = "write-scorecard"
)

//go:embed scorecard.schema.json
var scorecardSchemaJSON string

var scorecardSchema = validation.MustCompileSchema(scorecardSchemaJSON)

type Handler struct {
	config *Config
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		metrics.TaskRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	output, err := h.execute(ctx, input)
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.TaskRunsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.logger.Error("scorecard not written", stdErr.ToFields())
		return nil, err
	}
	metrics.TaskRunsCompleted.WithLabelValues(TaskType).Inc()
	return output, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	root := input.Root
	if root == "" {
		root = h.config.Root
	}
	year := input.Year
	if year == 0 {
		year = h.config.Year
	}
	generatedAt := input.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = h.now()
	}

	scorecard := models.NewScorecard(input.Username, input.Breakdown, generatedAt)
	if err := checkScorecard(scorecard); err != nil {
		return nil, err
	}

	dir := layout.ScorecardDir(root, year)
	path := layout.ScorecardPath(root, year, input.Username)
	if err := writeFileAtomic(dir, path, scorecard); err != nil {
		return nil, errors.NewScorecardWriteError(path, err)
	}

	h.logger.Info("scorecard written", map[string]interface{}{
		"username":   input.Username,
		"path":       path,
		"totalScore": input.Breakdown.TotalScore,
	})

	return &Output{Path: path, Scorecard: scorecard}, nil
}

// checkScorecard validates the record shape and that the total is the sum
// of the sub-scores.
func checkScorecard(sc *models.Scorecard) error {
	result, err := scorecardSchema.Validate(sc)
	if err != nil {
		return errors.NewScorecardSchemaError(err.Error())
	}
	if !result.Valid {
		return errors.NewScorecardSchemaError(strings.Join(result.GetErrorMessages(), "; "))
	}

	b := sc.Scores.ScoreBreakdown
	if sum := b.GenAIScore + b.OSSScore + b.ProjectsScore + b.ActivityScore + b.ProdScore; sum != b.TotalScore {
		return errors.NewScorecardSchemaError(fmt.Sprintf("total_score %d does not equal sub-score sum %d", b.TotalScore, sum))
	}
	return nil
}

// writeFileAtomic replaces path with the JSON encoding of v via a temp file
// in dir and a rename. path must live in dir.
func writeFileAtomic(dir, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
