package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateRegister(username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Use 3-30 characters: letters, numbers, underscores, or hyphens only")
	}

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	}

	return errs
}

func ValidateLogin(idText, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(idText) == "" {
		errs.Add("idText", "Username or email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateProfileUpdate checks only the fields the caller actually sent.
func ValidateProfileUpdate(email *string) ValidationErrors {
	errs := make(ValidationErrors)

	if email != nil && *email != "" {
		validateEmail(*email, errs)
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !emailRegex.MatchString(email) {
		errs.Add("email", "Invalid email address")
	}
}
