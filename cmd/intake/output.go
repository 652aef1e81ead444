// cmd/intake/output.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"recruit-intake/internal/models"
	vap "recruit-intake/internal/tasks/application/validate-application-profile"
	agp "recruit-intake/internal/tasks/profile/analyze-github-profile"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", formatText, "output format: text or json")
}

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type validationReport struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func newValidationReport(path string, out *vap.Output) validationReport {
	return validationReport{
		Path:     path,
		Valid:    out.Valid,
		Errors:   out.Errors,
		Warnings: out.Warnings,
	}
}

func printValidationText(w io.Writer, r validationReport) {
	status := "valid"
	if !r.Valid {
		status = "invalid"
	}
	fmt.Fprintf(w, "%s: %s\n", r.Path, status)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

type analysisReport struct {
	Username      string                `json:"username"`
	Metrics       models.ProfileMetrics `json:"metrics"`
	Scores        models.ScoreBreakdown `json:"scores"`
	FromCache     bool                  `json:"fromCache"`
	ScorecardPath string                `json:"scorecardPath,omitempty"`
}

func newAnalysisReport(out *agp.Output, scorecardPath string) analysisReport {
	return analysisReport{
		Username:      out.Username,
		Metrics:       out.Metrics,
		Scores:        out.Breakdown,
		FromCache:     out.FromCache,
		ScorecardPath: scorecardPath,
	}
}

func printAnalysisText(w io.Writer, r analysisReport) {
	b := r.Scores
	fmt.Fprintf(w, "GitHub profile analysis for %s\n", r.Username)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "genai_score", b.GenAIScore, models.MaxGenAIScore)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "oss_score", b.OSSScore, models.MaxOSSScore)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "projects_score", b.ProjectsScore, models.MaxProjectsScore)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "activity_score", b.ActivityScore, models.MaxActivityScore)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "prod_score", b.ProdScore, models.MaxProdScore)
	fmt.Fprintf(w, "  %-15s %3d/%d\n", "total_score", b.TotalScore, models.MaxTotalScore)
	if r.ScorecardPath != "" {
		fmt.Fprintf(w, "scorecard: %s\n", r.ScorecardPath)
	}
}
