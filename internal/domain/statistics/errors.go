package statistics

import "errors"

var ErrUnknownDepartment = errors.New("unknown department")
