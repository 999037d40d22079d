package service

import (
	"errors"
	"sort"
	"strings"

	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

// NonFieldErrors keys validation messages that concern the whole payload.
const NonFieldErrors = "non_field_errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfirmation is a wrong, stale or already used confirmation code.
	ErrInvalidConfirmation = errors.New("invalid token")
	// ErrSignupMismatch means the email or username belongs to a different account.
	ErrSignupMismatch = errors.New("email and username do not match an existing account")
	ErrDeliveryFailed = errors.New("could not deliver the confirmation email")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")

	ErrUnauthenticated = policy.ErrUnauthenticated
	ErrForbidden       = policy.ErrForbidden
)

// ValidationError carries client-correctable problems keyed by field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fromRepo converts repository sentinels into service errors. Constraint
// violations become validation errors on the field they guard, or on
// fallbackField when the driver did not say.
func fromRepo(err error, fallbackField string, messages map[string]string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}

	var ce *repository.ConstraintError
	if !errors.As(err, &ce) {
		return err
	}
	field := ce.Field
	if field == "" {
		field = fallbackField
	}
	msg, ok := messages[field]
	if !ok {
		if errors.Is(ce, repository.ErrDuplicate) {
			msg = "a record with this " + field + " already exists"
		} else {
			msg = "value is not allowed"
		}
	}
	return NewValidationError(field, msg)
}
