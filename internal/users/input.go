package users

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxUsernameLength = 15
	maxAge            = 150
)

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username     string
	Password     string
	Roles        []string
	AuthStrategy string
}

// Validate checks the input before it reaches storage.
func (in CreateUserInput) Validate() error {
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if in.Password == "" {
		return invalid("password is required")
	}
	for _, role := range in.Roles {
		if strings.TrimSpace(role) == "" {
			return invalid("roles must not contain empty labels")
		}
		if strings.Contains(role, ",") {
			return invalid("roles must not contain commas")
		}
	}
	return nil
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string
	Password *string
}

// Validate checks the fields that are present.
func (in UpdateUserInput) Validate() error {
	if in.Username != nil {
		if err := validateUsername(*in.Username); err != nil {
			return err
		}
	}
	if in.Password != nil && *in.Password == "" {
		return invalid("password must not be empty")
	}
	return nil
}

// CreateProfileInput describes the profile to attach to a user.
type CreateProfileInput struct {
	Firstname string
	Lastname  string
	Age       int
}

// Validate checks the profile fields.
func (in CreateProfileInput) Validate() error {
	if strings.TrimSpace(in.Firstname) == "" {
		return invalid("firstname is required")
	}
	if strings.TrimSpace(in.Lastname) == "" {
		return invalid("lastname is required")
	}
	if in.Age < 0 || in.Age > maxAge {
		return invalid(fmt.Sprintf("age must be between 0 and %d", maxAge))
	}
	return nil
}

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// Validate rejects empty credentials.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return invalid("username and password are required")
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 || strings.TrimSpace(username) == "" {
		return invalid("username is required")
	}
	if n > maxUsernameLength {
		return invalid(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	return nil
}
