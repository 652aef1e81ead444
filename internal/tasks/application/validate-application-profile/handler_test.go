// internal/tasks/application/validate-application-profile/handler_test.go
package validateapplicationprofile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const validProfile = `essentials:
  github_username: alice
  email: alice@example.com
  full_name: Alice Example
genai_mastery:
  primary_tools:
    - Claude
    - Cursor
tech_stack_alignment:
  languages: [Go, Python]
shipping_velocity:
  recent_project: intake bot
availability:
  start_date: "2025-02-01"
  commitment_level: full-time
`

// replaceLine swaps the first line containing old for repl ("" removes it).
func replaceLine(doc, old, repl string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.Contains(line, old) {
			if repl == "" {
				return strings.Join(append(lines[:i:i], lines[i+1:]...), "\n")
			}
			lines[i] = repl
			return strings.Join(lines, "\n")
		}
	}
	return doc
}

// dropSection removes a top-level section and its indented body.
func dropSection(doc, name string) string {
	var out []string
	skipping := false
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, name+":") {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(line, "  ") {
			continue
		}
		skipping = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(nil), &testLogger{t: t})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidProfile(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{Content: []byte(validProfile), FileName: "alice.yml"})
	require.NoError(t, err)

	assert.True(t, out.Valid)
	assert.NotNil(t, out.Errors)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Warnings)

	require.NotNil(t, out.Profile)
	assert.Equal(t, "alice", out.Profile.Essentials.GitHubUsername)
	assert.Equal(t, []string{"Claude", "Cursor"}, out.Profile.GenAIMastery.PrimaryTools)
	assert.Equal(t, "full-time", out.Profile.Availability.CommitmentLevel)
}

func TestValidate_MissingSectionIsolated(t *testing.T) {
	sections := []string{"essentials", "genai_mastery", "tech_stack_alignment", "shipping_velocity", "availability"}

	for _, name := range sections {
		t.Run(name, func(t *testing.T) {
			out := Validate([]byte(dropSection(validProfile, name)), "alice.yml")

			assert.False(t, out.Valid)
			assert.Equal(t, []string{"Missing required section: " + name}, out.Errors)
		})
	}
}

func TestValidate_Findings(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		fileName     string
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:       "filename mismatch",
			doc:        validProfile,
			fileName:   "bob.yml",
			wantErrors: []string{"File should be named: alice.yml"},
		},
		{
			name:       "filename compared on base name",
			doc:        validProfile,
			fileName:   "applications/2025/pending/alice.yml",
			wantErrors: []string{},
		},
		{
			name:       "yaml extension is not accepted",
			doc:        validProfile,
			fileName:   "alice.yaml",
			wantErrors: []string{"File should be named: alice.yml"},
		},
		{
			name:       "invalid email",
			doc:        replaceLine(validProfile, "email:", "  email: not-an-email"),
			fileName:   "alice.yml",
			wantErrors: []string{"Invalid email format"},
		},
		{
			name:       "short email passes",
			doc:        replaceLine(validProfile, "email:", "  email: a@b.co"),
			fileName:   "alice.yml",
			wantErrors: []string{},
		},
		{
			name:     "leading hyphen username",
			doc:      replaceLine(validProfile, "github_username:", "  github_username: -abc"),
			fileName: "-abc.yml",
			wantErrors: []string{
				"Invalid GitHub username format",
			},
		},
		{
			name:     "double hyphen username also misnamed",
			doc:      replaceLine(validProfile, "github_username:", "  github_username: ab--c"),
			fileName: "alice.yml",
			wantErrors: []string{
				"Invalid GitHub username format",
				"File should be named: ab--c.yml",
			},
		},
		{
			name:     "missing username skips format and filename checks",
			doc:      replaceLine(validProfile, "github_username:", ""),
			fileName: "alice.yml",
			wantErrors: []string{
				"Missing required field: essentials.github_username",
			},
		},
		{
			name:     "empty email is missing, not malformed",
			doc:      replaceLine(validProfile, "email:", `  email: ""`),
			fileName: "alice.yml",
			wantErrors: []string{
				"Missing required field: essentials.email",
			},
		},
		{
			name:         "empty primary tools is only a warning",
			doc:          replaceLine(replaceLine(replaceLine(validProfile, "primary_tools:", "  primary_tools: []"), "- Claude", ""), "- Cursor", ""),
			fileName:     "alice.yml",
			wantErrors:   []string{},
			wantWarnings: []string{noAIToolsWarning},
		},
		{
			name:     "availability fields",
			doc:      replaceLine(replaceLine(validProfile, "start_date:", ""), "commitment_level:", "  commitment_level: null"),
			fileName: "alice.yml",
			wantErrors: []string{
				"Missing required field: availability.start_date",
				"Missing required field: availability.commitment_level",
			},
		},
		{
			name:     "non-mapping section",
			doc:      replaceLine(dropSection(validProfile, "availability"), "shipping_velocity:", "availability: soon\nshipping_velocity:"),
			fileName: "alice.yml",
			wantErrors: []string{
				"Invalid section format: availability must be a mapping",
			},
		},
		{
			name:     "null section is missing",
			doc:      dropSection(validProfile, "essentials") + "essentials:\n",
			fileName: "alice.yml",
			wantErrors: []string{
				"Missing required section: essentials",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Validate([]byte(tt.doc), tt.fileName)

			assert.Equal(t, tt.wantErrors, out.Errors)
			if tt.wantWarnings == nil {
				tt.wantWarnings = []string{}
			}
			assert.Equal(t, tt.wantWarnings, out.Warnings)
			assert.Equal(t, len(tt.wantErrors) == 0, out.Valid)
		})
	}
}

func TestValidate_EmptySectionsArePresent(t *testing.T) {
	doc := `essentials: {}
genai_mastery: {}
tech_stack_alignment: {}
shipping_velocity: {}
availability: {}
`
	out := Validate([]byte(doc), "alice.yml")

	assert.Equal(t, []string{
		"Missing required field: essentials.github_username",
		"Missing required field: essentials.email",
		"Missing required field: essentials.full_name",
		"Missing required field: availability.start_date",
		"Missing required field: availability.commitment_level",
	}, out.Errors)
	assert.Equal(t, []string{noAIToolsWarning}, out.Warnings)
	assert.Nil(t, out.Profile)
}

func TestValidate_ParseFailureShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"broken indentation", "essentials:\n  email: [unclosed\n"},
		{"empty document", ""},
		{"scalar document", "just a string"},
		{"list document", "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Validate([]byte(tt.doc), "bob.yml")

			require.Len(t, out.Errors, 1)
			assert.True(t, strings.HasPrefix(out.Errors[0], "Invalid YAML format: "))
			assert.Empty(t, out.Warnings)
			assert.False(t, out.Valid)
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	doc := replaceLine(dropSection(validProfile, "genai_mastery"), "email:", "  email: nope")
	first := Validate([]byte(doc), "bob.yml")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate([]byte(doc), "bob.yml"))
	}
}

// ==========================
// File Input Tests
// ==========================

func TestHandler_Execute_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bob.yml")
	require.NoError(t, os.WriteFile(path, []byte(validProfile), 0o644))

	out, err := newTestHandler(t).Execute(context.Background(), &Input{FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"File should be named: alice.yml"}, out.Errors)
}

func TestHandler_Execute_MissingFile(t *testing.T) {
	_, err := newTestHandler(t).Execute(context.Background(), &Input{FilePath: filepath.Join(t.TempDir(), "nope.yml")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileReadFailed))
}
