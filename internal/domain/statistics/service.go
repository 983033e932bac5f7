package statistics

import "context"

// StatisticsService defines the admin reporting operations
type StatisticsService interface {
	// GetDepartment aggregates submitted evaluations of one department
	GetDepartment(ctx context.Context, department string) (*DepartmentStatistics, error)

	// GetOverview aggregates every known department concurrently
	GetOverview(ctx context.Context) (*OverviewResponse, error)
}
