package auth

import (
	"net/mail"
	"unicode/utf8"

	"github.com/ayush/auth-server/internal/models"
)

const minNameLength = 3

// Registration is a RegisterRequest that passed validation, with its wire
// values decoded.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  models.Password
	UserType  models.UserType
	Tags      []models.Tag
}

// Validator checks registration input. It never touches the store.
type Validator struct {
	tags              models.TagSet
	minPasswordLength int
}

// NewValidator returns a Validator accepting tags from set. A minPasswordLength
// below 1 is raised to 1 so the password is always required.
func NewValidator(set models.TagSet, minPasswordLength int) *Validator {
	if minPasswordLength < 1 {
		minPasswordLength = 1
	}
	return &Validator{tags: set, minPasswordLength: minPasswordLength}
}

// Validate checks req field by field and stops at the first failure.
func (v *Validator) Validate(req models.RegisterRequest) (*Registration, error) {
	if utf8.RuneCountInString(req.FirstName) < minNameLength {
		return nil, &ValidationError{Field: "first_name", Rule: RuleMinLength}
	}
	if utf8.RuneCountInString(req.LastName) < minNameLength {
		return nil, &ValidationError{Field: "last_name", Rule: RuleMinLength}
	}
	if !validEmail(req.Email) {
		return nil, &ValidationError{Field: "email_id", Rule: RuleEmail}
	}

	pwLen := utf8.RuneCount(req.Password.Bytes())
	switch {
	case pwLen == 0:
		return nil, &ValidationError{Field: "password", Rule: RuleRequired}
	case pwLen < v.minPasswordLength:
		return nil, &ValidationError{Field: "password", Rule: RuleMinLength}
	}

	userType, err := models.ParseUserType(req.UserType)
	if err != nil {
		return nil, &ValidationError{Field: "user_type", Rule: RuleOneOf}
	}

	tags := make([]models.Tag, 0, len(req.Tags))
	seen := make(map[models.Tag]struct{}, len(req.Tags))
	for _, raw := range req.Tags {
		tag, err := v.tags.Parse(raw)
		if err != nil {
			return nil, &ValidationError{Field: "user_tags", Rule: RuleOneOf}
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return &Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		UserType:  userType,
		Tags:      tags,
	}, nil
}

// validEmail accepts a bare RFC 5322 address. Display names and angle
// brackets are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == s
}
