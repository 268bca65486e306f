package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/qa-forum/internal/apperr"
)

func TestText(t *testing.T) {
	assert.Equal(t, "<b>hello</b> world", Text("  <b>hello</b> world  "))
	assert.Equal(t, "a<b && c>d", Text("\ta<b && c>d\n"))
	assert.Equal(t, "", Text(" \t\n "))
}

func TestLength(t *testing.T) {
	assert.Nil(t, Length("title", "abcde", 5, 100))
	assert.NotNil(t, Length("title", "abcd", 5, 100))
	assert.Nil(t, Length("title", strings.Repeat("x", 100), 5, 100))
	assert.NotNil(t, Length("title", strings.Repeat("x", 101), 5, 100))
	// counted in runes, not bytes
	assert.Nil(t, Length("title", "ççççç", 5, 5))
}

func TestEmailUsernamePassword(t *testing.T) {
	assert.Nil(t, Email("email", "a@b.io"))
	assert.NotNil(t, Email("email", "not-an-email"))
	assert.NotNil(t, Email("email", "a b@c.d"))

	assert.Nil(t, Username("username", "jane_doe"))
	assert.NotNil(t, Username("username", "jd"))
	assert.NotNil(t, Username("username", "jane doe"))

	assert.Nil(t, Password("password", "longenough"))
	assert.NotNil(t, Password("password", "short"))
	assert.NotNil(t, Password("password", strings.Repeat("p", 73)))
}

func TestPositiveID(t *testing.T) {
	id, f := PositiveID("id", "42")
	require.Nil(t, f)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"0", "-1", "abc", "", "1.5"} {
		_, f := PositiveID("id", raw)
		assert.NotNil(t, f, raw)
	}
}

func TestErrs(t *testing.T) {
	var errs Errs
	errs.Add(nil)
	assert.NoError(t, errs.Err())

	errs.Add(Required("title", ""))
	errs.Add(Length("description", "short", 10, 1000))
	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	assert.Len(t, apperr.FieldsOf(err), 2)
}
