package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrNotFound          = errors.New("user not found")
	ErrPasswordMismatch  = errors.New("password mismatch")
)

// Validation rules reported in ValidationError.Rule.
const (
	RuleRequired  = "required"
	RuleMinLength = "min_length"
	RuleEmail     = "email"
	RuleOneOf     = "one_of"
)

// ValidationError identifies the registration field and rule that failed.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

// StoreError wraps a persistence failure that is not otherwise classified.
// Cause is for diagnostics only.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return "user store " + e.Op + " failed"
}

func (e *StoreError) Unwrap() error { return e.Cause }

func storeError(op string, err error) error {
	return &StoreError{
		Op: op,
		Cause: oops.
			In("user_store").
			Code("USER_STORE_" + strings.ToUpper(op) + "_FAILED").
			Wrap(err),
	}
}

// Kind classifies an error returned by Service.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAlreadyExists
	KindNotFound
	KindPasswordMismatch
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindPasswordMismatch:
		return "password_mismatch"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Classify maps err onto the taxonomy.
func Classify(err error) Kind {
	var ve *ValidationError
	var se *StoreError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrUserAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPasswordMismatch):
		return KindPasswordMismatch
	case errors.As(err, &se):
		return KindStore
	}
	return KindUnknown
}
