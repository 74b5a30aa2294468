package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("order was modified concurrently")

	ErrIllegalTransition = errors.New("illegal order transition")
	ErrPaymentPending    = errors.New("cash on delivery payment not confirmed")
	ErrDriverRequired    = errors.New("driver selection required")
	ErrInvalidDriver     = errors.New("driver does not belong to restaurant")

	ErrDeliverySettingsIncomplete = errors.New("restaurant delivery settings are incomplete")
	ErrLocationRequired           = errors.New("delivery address coordinates required")
	ErrOutOfDeliveryRange         = errors.New("sorry, we don't serve your location")

	ErrCouponNotApplicable = errors.New("coupon not applicable")

	ErrCacheMiss       = errors.New("cache miss")
	ErrGeocodeNotFound = errors.New("no address found for location")
)

// ValidationError aggregates per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err carries field validation details.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
