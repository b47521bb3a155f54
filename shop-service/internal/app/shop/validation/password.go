package validation

import (
	"regexp"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	// PasswordMaxBytes - предел bcrypt, более длинный пароль не хэшируется
	PasswordMaxBytes = 72
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// CheckPassword возвращает все нарушенные правила сложности пароля, пустой срез - пароль подходит
func CheckPassword(password string) []string {
	var violations []string

	if utf8.RuneCountInString(password) < PasswordMinLength {
		violations = append(violations, "This password is too short. It must contain at least 8 characters.")
	}
	if !upperRe.MatchString(password) {
		violations = append(violations, "Password must contain at least 1 uppercase letter.")
	}
	if !lowerRe.MatchString(password) {
		violations = append(violations, "Password must contain at least 1 lowercase letter.")
	}
	if !digitRe.MatchString(password) {
		violations = append(violations, "Password must contain at least 1 digit.")
	}
	if !specialRe.MatchString(password) {
		violations = append(violations, "Password must contain at least 1 special character.")
	}
	if len(password) > PasswordMaxBytes {
		violations = append(violations, "Password cannot exceed 72 bytes.")
	}

	return violations
}

// Password проверяет пароль и возвращает ошибки, привязанные к полю field
func Password(field, password string) error {
	var errs Errors
	for _, msg := range CheckPassword(password) {
		errs = errs.Add(field, msg)
	}
	return errs.Err()
}
