package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/statistics"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersonnelRepo struct {
	personnel.PersonnelRepository
	people []personnel.Personnel
}

func (f *fakePersonnelRepo) List(_ context.Context, filter personnel.ListFilter) ([]personnel.Personnel, error) {
	var out []personnel.Personnel
	for _, p := range f.people {
		if p.Department == filter.Department && p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	user.UserRepository
	users []user.User
}

func (f *fakeUserRepo) ListByDepartment(_ context.Context, department string) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Department == department {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeEvaluationRepo struct {
	evaluation.EvaluationRepository
	submitted []evaluation.Evaluation
	err       error
}

func (f *fakeEvaluationRepo) ListSubmittedByDepartment(_ context.Context, department string) ([]evaluation.Evaluation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []evaluation.Evaluation
	for _, e := range f.submitted {
		if e.Department == department {
			out = append(out, e)
		}
	}
	return out, nil
}

var smallQuota = grading.QuotaTable{
	grading.DepartmentKaitou: {
		Department: grading.DepartmentKaitou,
		MaxA:       1,
		B:          grading.Range{Min: 1, Max: 1},
		C:          grading.Range{Min: 0, Max: 1},
		DE:         grading.Range{Min: 0, Max: 1},
		Headcount:  2,
	},
}

func submitted(rater, ratee string, total int) evaluation.Evaluation {
	return evaluation.Evaluation{RaterID: rater, RateeID: ratee, Department: "kaitou", TotalScore: total, Status: evaluation.StatusSubmitted}
}

func newService(evals *fakeEvaluationRepo) statistics.StatisticsService {
	p2 := "p2"
	people := &fakePersonnelRepo{people: []personnel.Personnel{
		{ID: "p1", Name: "Ann", Department: "kaitou", Active: true},
		{ID: "p2", Name: "Bo", Department: "kaitou", Active: true},
		{ID: "p3", Name: "Cai", Department: "kaitou", Active: true},
	}}
	users := &fakeUserRepo{users: []user.User{
		{ID: "r1", Name: "Rater One", Role: user.RoleRater, Department: "kaitou", PersonnelID: &p2},
		{ID: "r2", Name: "Rater Two", Role: user.RoleRater, Department: "kaitou"},
		{ID: "r3", Name: "Rater Three", Role: user.RoleRater, Department: "kaitou"},
		{ID: "adm", Name: "Admin", Role: user.RoleAdmin, Department: "kaitou"},
	}}
	return NewStatisticsService(people, users, evals, grading.NewEngine(grading.DefaultRubric(), smallQuota))
}

func adminCtx() context.Context {
	return user.WithPrincipal(context.Background(), user.Principal{UserID: "adm", Role: user.RoleAdmin})
}

func TestStatisticsService_GetDepartment(t *testing.T) {
	evals := &fakeEvaluationRepo{submitted: []evaluation.Evaluation{
		// r1 evaluated everyone except their own record: one A and one B, valid
		submitted("r1", "p1", 98),
		submitted("r1", "p3", 90),
		// r2 gave two A grades and is missing a ratee
		submitted("r2", "p1", 96),
		submitted("r2", "p3", 100),
	}}
	svc := newService(evals)

	stats, err := svc.GetDepartment(adminCtx(), "kaitou")
	require.NoError(t, err)

	assert.Equal(t, "开投贸易", stats.DepartmentName)
	require.NotNil(t, stats.Quota)
	assert.Equal(t, 3, stats.RateeCount)
	assert.Equal(t, 3, stats.RaterCount)
	assert.Equal(t, 2, stats.SubmittedRaterCount)

	require.Len(t, stats.Ratees, 3)
	ann := stats.Ratees[0]
	assert.Equal(t, 2, ann.EvaluationCount)
	assert.InDelta(t, 97.0, ann.AverageScore, 0.001)
	assert.Equal(t, grading.GradeA, ann.Grade.Code)
	assert.Zero(t, stats.Ratees[1].EvaluationCount)
	assert.InDelta(t, 95.0, stats.Ratees[2].AverageScore, 0.001)

	assert.Equal(t, 2, stats.Distribution.A)

	byID := map[string]statistics.RaterStatus{}
	for _, r := range stats.Raters {
		byID[r.UserID] = r
	}
	assert.True(t, byID["r1"].Completed)
	assert.True(t, byID["r1"].QuotaValid)
	assert.False(t, byID["r2"].Completed)
	assert.False(t, byID["r2"].QuotaValid)
	assert.NotEmpty(t, byID["r2"].QuotaMessage)
	assert.Zero(t, byID["r3"].SubmittedCount)
	assert.NotContains(t, byID, "adm")
}

func TestStatisticsService_QuotaCountsRequiredRatees(t *testing.T) {
	// r3 has no personnel record and owes all three ratees, one more than the quota headcount
	evals := &fakeEvaluationRepo{submitted: []evaluation.Evaluation{
		submitted("r3", "p1", 98),
		submitted("r3", "p2", 90),
		submitted("r3", "p3", 80),
	}}
	stats, err := newService(evals).GetDepartment(adminCtx(), "kaitou")
	require.NoError(t, err)

	var r3 statistics.RaterStatus
	for _, r := range stats.Raters {
		if r.UserID == "r3" {
			r3 = r
		}
	}
	assert.True(t, r3.Completed)
	assert.True(t, r3.QuotaValid, r3.QuotaMessage)
	assert.Empty(t, r3.QuotaMessage)
}

func TestStatisticsService_Access(t *testing.T) {
	svc := newService(&fakeEvaluationRepo{})

	raterCtx := user.WithPrincipal(context.Background(), user.Principal{UserID: "r1", Role: user.RoleRater})
	_, err := svc.GetDepartment(raterCtx, "kaitou")
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = svc.GetDepartment(adminCtx(), "marketing")
	assert.ErrorIs(t, err, statistics.ErrUnknownDepartment)

	_, err = svc.GetOverview(context.Background())
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestStatisticsService_GetOverview(t *testing.T) {
	svc := newService(&fakeEvaluationRepo{submitted: []evaluation.Evaluation{submitted("r1", "p1", 80)}})

	overview, err := svc.GetOverview(adminCtx())
	require.NoError(t, err)
	require.Len(t, overview.Departments, len(grading.Departments))
	assert.WithinDuration(t, time.Now(), overview.GeneratedAt, time.Minute)

	for i, d := range grading.Departments {
		assert.Equal(t, d.ID, overview.Departments[i].Department)
	}

	failing := newService(&fakeEvaluationRepo{err: errors.New("connection reset")})
	_, err = failing.GetOverview(adminCtx())
	assert.ErrorContains(t, err, "connection reset")
}
