package personnel

import "errors"

var (
	ErrPersonnelNotFound   = errors.New("personnel not found")
	ErrPersonnelNameExists = errors.New("personnel with this name already exists in the department")
	ErrDepartmentForbidden = errors.New("personnel of other departments are not accessible")
)
