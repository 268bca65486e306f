package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), Internal},
		{"direct", New(NotFound, "question not found"), NotFound},
		{"wrapped", fmt.Errorf("update: %w", New(Forbidden, "not yours")), Forbidden},
		{"invalid", Invalid(FieldError{Field: "title", Msg: "too short"}), InvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Wrap(Internal, "insert vote", errors.New("pq: connection reset"))
	assert.Equal(t, "internal error", Message(err))
	assert.Equal(t, "internal error", Message(errors.New("raw driver error")))
	assert.Equal(t, "question not found", Message(New(NotFound, "question not found")))
}

func TestInvalidSingleFieldMessage(t *testing.T) {
	err := Invalid(FieldError{Field: "value", Msg: "must be 1 or -1"})
	assert.Equal(t, "value: must be 1 or -1", err.Msg)
	assert.Len(t, FieldsOf(err), 1)

	multi := Invalid(FieldError{Field: "a", Msg: "x"}, FieldError{Field: "b", Msg: "y"})
	assert.Equal(t, "invalid input", multi.Msg)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(Internal, "ctx", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, Internal))
	assert.False(t, Is(nil, Internal))
}
