// Package layout holds the path conventions of the application tree:
//
//	<root>/<year>/pending/<username>.yml
//	<root>/<year>/scorecards/<username>-score.json
package layout

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recruit-intake/internal/common/errors"
)

const (
	PendingDir      = "pending"
	ScorecardsDir   = "scorecards"
	ProfileExt      = ".yml"
	ScorecardSuffix = "-score.json"
)

// changed-file paths arrive slash-separated from git
var pendingPattern = regexp.MustCompile(`^\d{4}/pending/[^/]+\.yml$`)

// PendingPath returns the conventional location of a submitted profile.
func PendingPath(root string, year int, username string) string {
	return filepath.Join(root, strconv.Itoa(year), PendingDir, username+ProfileExt)
}

// ScorecardPath returns where the scorecard for username is persisted.
func ScorecardPath(root string, year int, username string) string {
	return filepath.Join(root, strconv.Itoa(year), ScorecardsDir, username+ScorecardSuffix)
}

// ScorecardDir returns the scorecard directory for a year.
func ScorecardDir(root string, year int) string {
	return filepath.Join(root, strconv.Itoa(year), ScorecardsDir)
}

// PendingGlob matches every pending profile of a year.
func PendingGlob(root string, year int) string {
	return filepath.Join(root, strconv.Itoa(year), PendingDir, "*"+ProfileExt)
}

// IsPendingProfile reports whether p is a pending profile under root.
func IsPendingProfile(root, p string) bool {
	p = filepath.ToSlash(p)
	prefix := strings.TrimSuffix(filepath.ToSlash(root), "/") + "/"
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	return pendingPattern.MatchString(strings.TrimPrefix(p, prefix))
}

// FindChangedApplication picks the single pending profile out of the files
// changed by a pull request.
func FindChangedApplication(root string, changed []string) (string, error) {
	seen := map[string]struct{}{}
	var matches []string
	for _, f := range changed {
		f = strings.TrimSpace(f)
		if f == "" || !IsPendingProfile(root, f) {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		matches = append(matches, f)
	}

	switch len(matches) {
	case 0:
		return "", errors.NewNoApplicationChangedError()
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", errors.NewMultipleApplicationsChangedError(matches)
	}
}

// YearOf extracts the year segment from a pending profile or scorecard path.
func YearOf(p string) (int, error) {
	parts := strings.Split(filepath.ToSlash(p), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i+1] != PendingDir && parts[i+1] != ScorecardsDir {
			continue
		}
		if year, err := strconv.Atoi(parts[i]); err == nil && len(parts[i]) == 4 {
			return year, nil
		}
	}
	return 0, fmt.Errorf("no year segment in path %q", p)
}

// UsernameOf returns the username a profile path is named after.
func UsernameOf(p string) string {
	return strings.TrimSuffix(path.Base(filepath.ToSlash(p)), ProfileExt)
}
