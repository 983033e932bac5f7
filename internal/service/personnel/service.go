package personnel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type PersonnelServiceImpl struct {
	repo personnel.PersonnelRepository
}

func NewPersonnelService(repo personnel.PersonnelRepository) personnel.PersonnelService {
	return &PersonnelServiceImpl{repo: repo}
}

func requireAdmin(ctx context.Context) (user.Principal, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !principal.IsAdmin() {
		return user.Principal{}, user.ErrAdminPrivilegeRequired
	}
	return principal, nil
}

// Create implements personnel.PersonnelService.
func (s *PersonnelServiceImpl) Create(ctx context.Context, req personnel.CreatePersonnelRequest) (personnel.PersonnelResponse, error) {
	principal, err := requireAdmin(ctx)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if err := req.Validate(); err != nil {
		return personnel.PersonnelResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return personnel.PersonnelResponse{}, fmt.Errorf("failed to generate personnel id: %w", err)
	}

	created, err := s.repo.Create(ctx, personnel.Personnel{
		ID:         id.String(),
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Active:     true,
	})
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}

	slog.Info("personnel created", "personnel_id", created.ID, "department", created.Department, "created_by", principal.UserID)
	return created.ToResponse(), nil
}

// Get implements personnel.PersonnelService. Raters only see their own department.
func (s *PersonnelServiceImpl) Get(ctx context.Context, id string) (personnel.PersonnelResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}
	if !validator.IsValidUUID(id) {
		return personnel.PersonnelResponse{}, personnel.ErrPersonnelNotFound
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}
	if !principal.IsAdmin() && p.Department != principal.Department {
		return personnel.PersonnelResponse{}, personnel.ErrDepartmentForbidden
	}
	return p.ToResponse(), nil
}

// List implements personnel.PersonnelService. Raters get the active personnel of their department.
func (s *PersonnelServiceImpl) List(ctx context.Context, filter personnel.ListFilter) ([]personnel.PersonnelResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		filter = personnel.ListFilter{Department: principal.Department}
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]personnel.PersonnelResponse, 0, len(list))
	for _, p := range list {
		responses = append(responses, p.ToResponse())
	}
	return responses, nil
}

// Update implements personnel.PersonnelService.
func (s *PersonnelServiceImpl) Update(ctx context.Context, req personnel.UpdatePersonnelRequest) (personnel.PersonnelResponse, error) {
	principal, err := requireAdmin(ctx)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if err := req.Validate(); err != nil {
		return personnel.PersonnelResponse{}, err
	}

	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}

	existing.Name = req.Name
	existing.Department = req.Department
	existing.Position = req.Position
	if req.Active != nil {
		existing.Active = *req.Active
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return personnel.PersonnelResponse{}, err
	}

	slog.Info("personnel updated", "personnel_id", updated.ID, "updated_by", principal.UserID)
	return updated.ToResponse(), nil
}

// Delete implements personnel.PersonnelService.
func (s *PersonnelServiceImpl) Delete(ctx context.Context, id string) error {
	principal, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if !validator.IsValidUUID(id) {
		return personnel.ErrPersonnelNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("personnel deleted", "personnel_id", id, "deleted_by", principal.UserID)
	return nil
}
