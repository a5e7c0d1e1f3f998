package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotVisible      = errors.New("project is not visible to team leads")
	ErrAlreadyClaimed  = errors.New("project has already been picked by a team lead")
	ErrNotOwner        = errors.New("you do not own this project")
	ErrNotAssigned     = errors.New("employee is not assigned to this project")
	ErrProjectClosed   = errors.New("completed or cancelled projects cannot be released")

	ErrValidation         = errors.New("validation failed")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UnknownEmployeeError reports the ids in an assignment request that do
// not refer to existing employee-role users.
type UnknownEmployeeError struct {
	IDs []string
}

func (e *UnknownEmployeeError) Error() string {
	return fmt.Sprintf("unknown employees: %s", strings.Join(e.IDs, ", "))
}
