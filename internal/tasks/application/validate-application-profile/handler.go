// internal/tasks/application/validate-application-profile/handler.go
package validateapplicationprofile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/layout"
	"recruit-intake/internal/common/logger"
	"recruit-intake/internal/common/metrics"
	"recruit-intake/internal/common/validation"
	"recruit-intake/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	TaskType = "validate-application-profile"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute validates one profile. Findings are returned in Output; an error
// means the profile could not be read at all.
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
		metrics.TaskRunsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		return nil, err
	}
	metrics.TaskRunsCompleted.WithLabelValues(TaskType).Inc()
	return output, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	content := input.Content
	fileName := input.FileName

	if content == nil && input.FilePath != "" {
		data, err := os.ReadFile(input.FilePath)
		if err != nil {
			return nil, errors.NewProfileReadError(input.FilePath, err)
		}
		content = data
	}
	if fileName == "" && input.FilePath != "" {
		fileName = filepath.Base(input.FilePath)
	}

	output, malformed := validate(content, fileName)

	outcome := "passed"
	switch {
	case malformed:
		outcome = "malformed"
	case !output.Valid:
		outcome = "failed"
	}
	metrics.ValidationOutcomes.WithLabelValues(outcome).Inc()

	h.logger.Info("validation completed", map[string]interface{}{
		"fileName":     fileName,
		"isValid":      output.Valid,
		"errorCount":   len(output.Errors),
		"warningCount": len(output.Warnings),
	})

	return output, nil
}

// Validate runs every profile check against content. A parse failure is the
// single reported error; otherwise all checks run and accumulate in order.
func Validate(content []byte, fileName string) *Output {
	out, _ := validate(content, fileName)
	return out
}

func validate(content []byte, fileName string) (*Output, bool) {
	out := &Output{Errors: []string{}, Warnings: []string{}}

	doc, err := parseProfile(content)
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("Invalid YAML format: %s", err.Error()))
		return out, true
	}

	// required sections
	sections := make(map[string]map[string]interface{}, len(models.RequiredSections))
	for _, name := range models.RequiredSections {
		raw, ok := doc[name]
		if !ok || raw == nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Missing required section: %s", name))
			continue
		}
		section, ok := asMapping(raw)
		if !ok {
			out.Errors = append(out.Errors, fmt.Sprintf("Invalid section format: %s must be a mapping", name))
			continue
		}
		sections[name] = section
	}

	if essentials, ok := sections["essentials"]; ok {
		for _, field := range essentialFields {
			if validation.IsFalsy(essentials[field]) {
				out.Errors = append(out.Errors, fmt.Sprintf("Missing required field: essentials.%s", field))
			}
		}

		if email := essentials["email"]; !validation.IsFalsy(email) {
			if !validation.ValidateEmail(fmt.Sprint(email)) {
				out.Errors = append(out.Errors, "Invalid email format")
			}
		}

		if username := essentials["github_username"]; !validation.IsFalsy(username) {
			name := fmt.Sprint(username)
			if !validation.ValidateGitHubUsername(name) {
				out.Errors = append(out.Errors, "Invalid GitHub username format")
			}
			if fileName != "" {
				expected := name + layout.ProfileExt
				if filepath.Base(fileName) != expected {
					out.Errors = append(out.Errors, fmt.Sprintf("File should be named: %s", expected))
				}
			}
		}
	}

	if genai, ok := sections["genai_mastery"]; ok {
		if validation.IsFalsy(genai["primary_tools"]) {
			out.Warnings = append(out.Warnings, noAIToolsWarning)
		}
	}

	if availability, ok := sections["availability"]; ok {
		for _, field := range availabilityFields {
			if validation.IsFalsy(availability[field]) {
				out.Errors = append(out.Errors, fmt.Sprintf("Missing required field: availability.%s", field))
			}
		}
	}

	out.Valid = len(out.Errors) == 0
	if out.Valid {
		var profile models.ApplicationProfile
		// typed view is best effort; free-form values may not fit it
		if err := yaml.Unmarshal(content, &profile); err == nil {
			out.Profile = &profile
		}
	}

	return out, false
}

func parseProfile(content []byte) (map[string]interface{}, error) {
	var raw interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("document is empty")
	}
	doc, ok := asMapping(raw)
	if !ok {
		return nil, fmt.Errorf("top level must be a mapping, got %T", raw)
	}
	return doc, nil
}

// asMapping accepts both map shapes yaml.v3 produces.
func asMapping(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
