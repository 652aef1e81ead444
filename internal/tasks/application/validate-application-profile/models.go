// internal/tasks/application/validate-application-profile/models.go
package validateapplicationprofile

import "recruit-intake/internal/models"

// Input carries either a path to read or the raw content. FileName is the
// name the profile was submitted under; it defaults to the base of FilePath.
type Input struct {
	FilePath string `json:"filePath,omitempty"`
	Content  []byte `json:"content,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// Output is the validation verdict. Errors and Warnings keep check order.
type Output struct {
	Valid    bool                       `json:"valid"`
	Errors   []string                   `json:"errors"`
	Warnings []string                   `json:"warnings"`
	Profile  *models.ApplicationProfile `json:"profile,omitempty"`
}

var (
	essentialFields    = []string{"github_username", "email", "full_name"}
	availabilityFields = []string{"start_date", "commitment_level"}
)

const noAIToolsWarning = "No AI tools listed - this will significantly impact your score"
