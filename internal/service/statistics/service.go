package statistics

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/statistics"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type StatisticsServiceImpl struct {
	personnel   personnel.PersonnelRepository
	users       user.UserRepository
	evaluations evaluation.EvaluationRepository
	engine      *grading.Engine
	now         func() time.Time
}

func NewStatisticsService(
	personnelRepository personnel.PersonnelRepository,
	userRepository user.UserRepository,
	evaluationRepository evaluation.EvaluationRepository,
	engine *grading.Engine,
) statistics.StatisticsService {
	return &StatisticsServiceImpl{
		personnel:   personnelRepository,
		users:       userRepository,
		evaluations: evaluationRepository,
		engine:      engine,
		now:         time.Now,
	}
}

func requireStatisticsView(ctx context.Context) error {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	if !user.HasPermission(principal.Role, user.PermissionStatisticsView) {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

// GetDepartment implements statistics.StatisticsService.
func (s *StatisticsServiceImpl) GetDepartment(ctx context.Context, department string) (*statistics.DepartmentStatistics, error) {
	if err := requireStatisticsView(ctx); err != nil {
		return nil, err
	}
	dept := grading.Department(department)
	if !grading.IsKnownDepartment(dept) {
		return nil, statistics.ErrUnknownDepartment
	}
	return s.department(ctx, dept)
}

// GetOverview implements statistics.StatisticsService.
func (s *StatisticsServiceImpl) GetOverview(ctx context.Context) (*statistics.OverviewResponse, error) {
	if err := requireStatisticsView(ctx); err != nil {
		return nil, err
	}

	results := make([]statistics.DepartmentStatistics, len(grading.Departments))
	g, gCtx := errgroup.WithContext(ctx)
	for i, d := range grading.Departments {
		i, d := i, d
		g.Go(func() error {
			stats, err := s.department(gCtx, d.ID)
			if err != nil {
				return err
			}
			results[i] = *stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &statistics.OverviewResponse{Departments: results, GeneratedAt: s.now().UTC()}, nil
}

func (s *StatisticsServiceImpl) department(ctx context.Context, dept grading.Department) (*statistics.DepartmentStatistics, error) {
	var (
		ratees    []personnel.Personnel
		members   []user.User
		submitted []evaluation.Evaluation
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Active ratees
	g.Go(func() error {
		var err error
		ratees, err = s.personnel.List(gCtx, personnel.ListFilter{Department: string(dept)})
		return err
	})

	// 2. Accounts of the department
	g.Go(func() error {
		var err error
		members, err = s.users.ListByDepartment(gCtx, string(dept))
		return err
	})

	// 3. Submitted evaluations
	g.Go(func() error {
		var err error
		submitted, err = s.evaluations.ListSubmittedByDepartment(gCtx, string(dept))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.DepartmentStatistics{
		Department:     dept,
		DepartmentName: grading.DepartmentName(dept),
		RateeCount:     len(ratees),
		Ratees:         make([]statistics.RateeSummary, 0, len(ratees)),
		Raters:         []statistics.RaterStatus{},
	}
	if q, ok := s.engine.Quota(dept); ok {
		stats.Quota = &q
	}

	// Per-ratee averages
	totals := make(map[string][]int)
	byRater := make(map[string][]grading.Evaluation)
	for _, e := range submitted {
		totals[e.RateeID] = append(totals[e.RateeID], e.TotalScore)
		byRater[e.RaterID] = append(byRater[e.RaterID], grading.Evaluation{RateeID: e.RateeID, TotalScore: e.TotalScore})
	}

	var averaged []grading.Evaluation
	for _, r := range ratees {
		summary := statistics.RateeSummary{PersonnelID: r.ID, Name: r.Name, Position: r.Position}
		if scores := totals[r.ID]; len(scores) > 0 {
			sum := 0
			for _, v := range scores {
				sum += v
			}
			avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(scores))))
			rounded := int(avg.Round(0).IntPart())
			summary.EvaluationCount = len(scores)
			summary.AverageScore = avg.Round(2).InexactFloat64()
			summary.Grade = s.engine.Grade(rounded)
			averaged = append(averaged, grading.Evaluation{RateeID: r.ID, TotalScore: rounded})
		}
		stats.Ratees = append(stats.Ratees, summary)
	}
	stats.Distribution = s.engine.Count(averaged)

	// Per-rater progress
	activeRatees := make(map[string]bool, len(ratees))
	for _, r := range ratees {
		activeRatees[r.ID] = true
	}
	for _, m := range members {
		if m.Role != user.RoleRater {
			continue
		}
		required := len(ratees)
		if m.PersonnelID != nil && activeRatees[*m.PersonnelID] {
			required--
		}

		evals := byRater[m.ID]
		status := statistics.RaterStatus{
			UserID:         m.ID,
			Name:           m.Name,
			SubmittedCount: len(evals),
			Completed:      len(evals) > 0 && len(evals) >= required,
		}
		if len(evals) > 0 {
			stats.SubmittedRaterCount++
			res := s.engine.ValidateGradeDistributionFor(evals, dept, required)
			status.QuotaValid = res.Valid
			if !res.Valid {
				status.QuotaMessage = res.Message
			}
		}
		stats.Raters = append(stats.Raters, status)
	}
	stats.RaterCount = len(stats.Raters)

	sort.SliceStable(stats.Raters, func(i, j int) bool { return stats.Raters[i].Name < stats.Raters[j].Name })
	return stats, nil
}
