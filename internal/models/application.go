// internal/models/application.go
package models

// Required top-level sections of a submitted profile, in check order.
var RequiredSections = []string{
	"essentials",
	"genai_mastery",
	"tech_stack_alignment",
	"shipping_velocity",
	"availability",
}

// ApplicationProfile is the typed view of a submitted profile file. Free-form
// sections stay as maps since their fields vary between intake years.
type ApplicationProfile struct {
	Essentials         Essentials             `yaml:"essentials" json:"essentials"`
	GenAIMastery       GenAIMastery           `yaml:"genai_mastery" json:"genai_mastery"`
	TechStackAlignment map[string]interface{} `yaml:"tech_stack_alignment" json:"tech_stack_alignment"`
	ShippingVelocity   map[string]interface{} `yaml:"shipping_velocity" json:"shipping_velocity"`
	Availability       Availability           `yaml:"availability" json:"availability"`
}

type Essentials struct {
	GitHubUsername string `yaml:"github_username" json:"github_username"`
	Email          string `yaml:"email" json:"email"`
	FullName       string `yaml:"full_name" json:"full_name"`
	Location       string `yaml:"location,omitempty" json:"location,omitempty"`
	Timezone       string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

type GenAIMastery struct {
	PrimaryTools []string `yaml:"primary_tools" json:"primary_tools"`
	// remaining answers are free-form
	Extra map[string]interface{} `yaml:",inline" json:"extra,omitempty"`
}

type Availability struct {
	StartDate       string `yaml:"start_date" json:"start_date"`
	CommitmentLevel string `yaml:"commitment_level" json:"commitment_level"`
	HoursPerWeek    int    `yaml:"hours_per_week,omitempty" json:"hours_per_week,omitempty"`
}
