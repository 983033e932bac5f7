package statistics

import (
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
)

// RateeSummary aggregates the submitted evaluations of one ratee.
type RateeSummary struct {
	PersonnelID     string        `json:"personnel_id"`
	Name            string        `json:"name"`
	Position        string        `json:"position"`
	EvaluationCount int           `json:"evaluation_count"`
	AverageScore    float64       `json:"average_score"`
	Grade           grading.Grade `json:"grade"`
}

// RaterStatus reports the progress of one rater and whether their submitted grades
// satisfy the department quota.
type RaterStatus struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	SubmittedCount int    `json:"submitted_count"`
	Completed      bool   `json:"completed"`
	QuotaValid     bool   `json:"quota_valid"`
	QuotaMessage   string `json:"quota_message,omitempty"`
}

type DepartmentStatistics struct {
	Department          grading.Department `json:"department"`
	DepartmentName      string             `json:"department_name"`
	Quota               *grading.Quota     `json:"quota,omitempty"`
	RateeCount          int                `json:"ratee_count"`
	RaterCount          int                `json:"rater_count"`
	SubmittedRaterCount int                `json:"submitted_rater_count"`
	Distribution        grading.BandCounts `json:"distribution"`
	Ratees              []RateeSummary     `json:"ratees"`
	Raters              []RaterStatus      `json:"raters"`
}

type OverviewResponse struct {
	Departments []DepartmentStatistics `json:"departments"`
	GeneratedAt time.Time              `json:"generated_at"`
}
