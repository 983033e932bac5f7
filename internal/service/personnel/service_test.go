package personnel

import (
	"context"
	"sort"
	"testing"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	people map[string]personnel.Personnel
}

func newFakeRepo(people ...personnel.Personnel) *fakeRepo {
	r := &fakeRepo{people: make(map[string]personnel.Personnel)}
	for _, p := range people {
		r.people[p.ID] = p
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, p personnel.Personnel) (personnel.Personnel, error) {
	for _, existing := range r.people {
		if existing.Department == p.Department && existing.Name == p.Name {
			return personnel.Personnel{}, personnel.ErrPersonnelNameExists
		}
	}
	r.people[p.ID] = p
	return p, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (personnel.Personnel, error) {
	p, ok := r.people[id]
	if !ok {
		return personnel.Personnel{}, personnel.ErrPersonnelNotFound
	}
	return p, nil
}

func (r *fakeRepo) List(_ context.Context, filter personnel.ListFilter) ([]personnel.Personnel, error) {
	var out []personnel.Personnel
	for _, p := range r.people {
		if filter.Department != "" && p.Department != filter.Department {
			continue
		}
		if !filter.IncludeInactive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, p personnel.Personnel) (personnel.Personnel, error) {
	if _, ok := r.people[p.ID]; !ok {
		return personnel.Personnel{}, personnel.ErrPersonnelNotFound
	}
	r.people[p.ID] = p
	return p, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.people[id]; !ok {
		return personnel.ErrPersonnelNotFound
	}
	delete(r.people, id)
	return nil
}

func (r *fakeRepo) CountActiveByDepartment(ctx context.Context, department string) (int, error) {
	list, _ := r.List(ctx, personnel.ListFilter{Department: department})
	return len(list), nil
}

const (
	idWang  = "0188d0f2-7b8c-7b4a-8a2b-000000000001"
	idLi    = "0188d0f2-7b8c-7b4a-8a2b-000000000002"
	idZhang = "0188d0f2-7b8c-7b4a-8a2b-000000000003"
)

func seed() *fakeRepo {
	return newFakeRepo(
		personnel.Personnel{ID: idWang, Name: "Wang Wei", Department: "jingkong", Active: true},
		personnel.Personnel{ID: idLi, Name: "Li Na", Department: "jingkong", Active: false},
		personnel.Personnel{ID: idZhang, Name: "Zhang Min", Department: "kaitou", Active: true},
	)
}

func adminCtx() context.Context {
	return user.WithPrincipal(context.Background(), user.Principal{UserID: "admin", Role: user.RoleAdmin, Department: "general"})
}

func raterCtx(department string) context.Context {
	return user.WithPrincipal(context.Background(), user.Principal{UserID: "rater", Role: user.RoleRater, Department: department})
}

func TestPersonnelService_Create(t *testing.T) {
	svc := NewPersonnelService(seed())

	created, err := svc.Create(adminCtx(), personnel.CreatePersonnelRequest{Name: " Chen Jie ", Department: "kaitou", Position: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "Chen Jie", created.Name)
	assert.True(t, created.Active)
	assert.True(t, validator.IsValidUUID(created.ID))

	_, err = svc.Create(adminCtx(), personnel.CreatePersonnelRequest{Name: "Chen Jie", Department: "kaitou"})
	assert.ErrorIs(t, err, personnel.ErrPersonnelNameExists)

	_, err = svc.Create(raterCtx("kaitou"), personnel.CreatePersonnelRequest{Name: "X", Department: "kaitou"})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = svc.Create(adminCtx(), personnel.CreatePersonnelRequest{Name: "", Department: "marketing"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "department")
}

func TestPersonnelService_ListScopesRaters(t *testing.T) {
	svc := NewPersonnelService(seed())

	all, err := svc.List(adminCtx(), personnel.ListFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Raters cannot widen their view
	mine, err := svc.List(raterCtx("jingkong"), personnel.ListFilter{Department: "kaitou", IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Wang Wei", mine[0].Name)

	_, err = svc.List(context.Background(), personnel.ListFilter{})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestPersonnelService_Get(t *testing.T) {
	svc := NewPersonnelService(seed())

	p, err := svc.Get(raterCtx("kaitou"), idZhang)
	require.NoError(t, err)
	assert.Equal(t, "Zhang Min", p.Name)

	_, err = svc.Get(raterCtx("kaitou"), idWang)
	assert.ErrorIs(t, err, personnel.ErrDepartmentForbidden)

	_, err = svc.Get(adminCtx(), "0188d0f2-7b8c-7b4a-8a2b-0000000000ff")
	assert.ErrorIs(t, err, personnel.ErrPersonnelNotFound)

	_, err = svc.Get(adminCtx(), "42")
	assert.ErrorIs(t, err, personnel.ErrPersonnelNotFound)
}

func TestPersonnelService_UpdateAndDelete(t *testing.T) {
	repo := seed()
	svc := NewPersonnelService(repo)
	inactive := false

	updated, err := svc.Update(adminCtx(), personnel.UpdatePersonnelRequest{
		ID: idWang, Name: "Wang Wei", Department: "jingkong", Position: "Lead", Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Lead", updated.Position)

	// Omitted active flag keeps the stored value
	updated, err = svc.Update(adminCtx(), personnel.UpdatePersonnelRequest{ID: idWang, Name: "Wang Wei", Department: "jingkong"})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	require.NoError(t, svc.Delete(adminCtx(), idWang))
	assert.ErrorIs(t, svc.Delete(adminCtx(), idWang), personnel.ErrPersonnelNotFound)
	assert.ErrorIs(t, svc.Delete(adminCtx(), "not-a-uuid"), personnel.ErrPersonnelNotFound)
	assert.ErrorIs(t, svc.Delete(raterCtx("jingkong"), idLi), user.ErrAdminPrivilegeRequired)
}
