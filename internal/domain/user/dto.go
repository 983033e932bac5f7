package user

import (
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Password    string  `json:"password"`
	Role        Role    `json:"role"`
	Department  string  `json:"department"`
	PersonnelID *string `json:"personnel_id,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username is required"})
	} else if !validator.IsValidUsername(r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username must be 3-100 characters of letters, digits, '.', '_', '-' or '@'"})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not exceed 100 characters"})
	}

	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters"})
	}

	if !r.Role.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be 'admin' or 'rater'"})
	}

	if !grading.IsKnownDepartment(grading.Department(r.Department)) {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "unknown department"})
	}

	if r.PersonnelID != nil && !validator.IsValidUUID(*r.PersonnelID) {
		errs = append(errs, validator.ValidationError{Field: "personnel_id", Message: "personnel_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Department  string    `json:"department"`
	PersonnelID *string   `json:"personnel_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts the entity, dropping credentials.
func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Role:        u.Role,
		Department:  u.Department,
		PersonnelID: u.PersonnelID,
		CreatedAt:   u.CreatedAt,
	}
}
