package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrDuplicateEmail is returned by a user store when an insert violates the
// unique email constraint.
var ErrDuplicateEmail = errors.New("duplicate email")

// UserType is the kind of account.
type UserType string

const (
	Customer UserType = "Customer"
	Worker   UserType = "Worker"
)

// ParseUserType decodes a wire value into a UserType.
func ParseUserType(raw string) (UserType, error) {
	switch UserType(raw) {
	case Customer, Worker:
		return UserType(raw), nil
	}
	return "", fmt.Errorf("unknown user type %q", raw)
}

// Password holds plaintext secret material. It redacts itself when printed,
// logged or encoded.
type Password string

const redacted = "[REDACTED]"

func (p Password) String() string   { return redacted }
func (p Password) GoString() string { return redacted }

func (p Password) LogValue() slog.Value { return slog.StringValue(redacted) }

func (p Password) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// Bytes exposes the secret for hashing.
func (p Password) Bytes() []byte { return []byte(p) }

// User is the persisted account record. It has no JSON encoding on purpose;
// responses go through SanitizedUser.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	UserType     UserType
	Tags         []Tag
	Bio          string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitize projects the user into its public form.
func (u *User) Sanitize() *SanitizedUser {
	tags := make([]Tag, len(u.Tags))
	copy(tags, u.Tags)
	return &SanitizedUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		UserType:  u.UserType,
		Tags:      tags,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SanitizedUser is the only user representation returned to callers.
type SanitizedUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email_id"`
	UserType  UserType  `json:"user_type"`
	Tags      []Tag     `json:"user_tags"`
	Bio       string    `json:"bio,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRequest is the body for POST /auth/sign-up.
type RegisterRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  string   `json:"user_type"`
	Tags      []string `json:"user_tags"`
	Email     string   `json:"email_id"`
	Password  Password `json:"password"`
}

// LoginRequest is the body for POST /auth/sign-in.
type LoginRequest struct {
	Username string   `json:"username"`
	Password Password `json:"password"`
}

// UserRef identifies a user by email for find-user and delete-user.
type UserRef struct {
	Username string `json:"username"`
}
