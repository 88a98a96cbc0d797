package catalog

import "errors"

var (
	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("product validation failed")
	// ErrForbidden is returned when a mutation is attempted without the ADMIN role.
	ErrForbidden = errors.New("admin role required")
	// ErrProductNotFound is returned by repositories for an unknown id.
	ErrProductNotFound = errors.New("product not found")
)

// ValidationError carries the first rule a product violated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }
