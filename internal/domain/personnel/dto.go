package personnel

import (
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
)

type CreatePersonnelRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (r *CreatePersonnelRequest) Validate() error {
	errs := validateFields(r.Name, r.Department, r.Position)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePersonnelRequest struct {
	ID         string `json:"-"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Active     *bool  `json:"active,omitempty"`
}

func (r *UpdatePersonnelRequest) Validate() error {
	errs := validateFields(r.Name, r.Department, r.Position)
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateFields(name, department, position string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if len(name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}

	// Department
	if !grading.IsKnownDepartment(grading.Department(department)) {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "unknown department"})
	}

	// Position
	if len(position) > 100 {
		errs = append(errs, validator.ValidationError{Field: "position", Message: "position must not exceed 100 characters"})
	}

	return errs
}

// ListFilter narrows a personnel listing. Empty fields match everything.
type ListFilter struct {
	Department      string
	IncludeInactive bool
}

type PersonnelResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p Personnel) ToResponse() PersonnelResponse {
	return PersonnelResponse{
		ID:         p.ID,
		Name:       p.Name,
		Department: p.Department,
		Position:   p.Position,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
