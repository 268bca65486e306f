package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/qa-forum/internal/apperr"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-z0-9_.-]+$`)
)

// Errs collects field failures so a request reports all of them at once.
type Errs []apperr.FieldError

func (e *Errs) Add(f *apperr.FieldError) {
	if f != nil {
		*e = append(*e, *f)
	}
}

func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Invalid(e...)
}

// Text trims surrounding space. The rest is stored as written; markup is
// only neutralized when rendered.
func Text(s string) string {
	return strings.TrimSpace(s)
}

func Required(field, value string) *apperr.FieldError {
	if strings.TrimSpace(value) == "" {
		return &apperr.FieldError{Field: field, Msg: "required"}
	}
	return nil
}

// Length checks the rune count of value against inclusive bounds.
func Length(field, value string, min, max int) *apperr.FieldError {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return &apperr.FieldError{Field: field, Msg: "must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

func Email(field, value string) *apperr.FieldError {
	if len(value) > 254 || !emailRe.MatchString(value) {
		return &apperr.FieldError{Field: field, Msg: "must be a valid email address"}
	}
	return nil
}

func Username(field, value string) *apperr.FieldError {
	if f := Length(field, value, 3, 50); f != nil {
		return f
	}
	if !usernameRe.MatchString(value) {
		return &apperr.FieldError{Field: field, Msg: "may only contain letters, digits, '.', '_' and '-'"}
	}
	return nil
}

// Password enforces bcrypt's 72 byte ceiling next to the minimum length.
func Password(field, value string) *apperr.FieldError {
	if utf8.RuneCountInString(value) < 8 {
		return &apperr.FieldError{Field: field, Msg: "must be at least 8 characters"}
	}
	if len(value) > 72 {
		return &apperr.FieldError{Field: field, Msg: "must be at most 72 bytes"}
	}
	return nil
}

func PositiveID(field, raw string) (int64, *apperr.FieldError) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperr.FieldError{Field: field, Msg: "must be a positive integer"}
	}
	return id, nil
}
