package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name      string `json:"name" validate:"required,min=2,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Password2 string `json:"password2" label:"Confirm password" validate:"required,eqfield=Password" msg:"Passwords must match"`
}

type entry struct {
	From    string `json:"from" validate:"required,isodate"`
	Website string `json:"website" validate:"omitempty,url"`
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var errs Errors
	require.True(t, errors.As(err, &errs), "expected validation.Errors, got %T", err)

	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateStruct(&signup{Name: "Alice", Email: "alice@example.com", Password: "secret1", Password2: "secret1"})
		assert.NoError(t, err)
	})

	t.Run("one message per field", func(t *testing.T) {
		err := ValidateStruct(&signup{Name: "A", Email: "nope", Password: "", Password2: "x"})
		msgs := fieldMessages(t, err)

		assert.Len(t, msgs, 4)
		assert.Equal(t, "Name must be at least 2 characters", msgs["name"])
		assert.Equal(t, "Email is invalid", msgs["email"])
		assert.Equal(t, "Password field is required", msgs["password"])
		assert.Equal(t, "Passwords must match", msgs["password2"])
	})

	t.Run("dates and urls", func(t *testing.T) {
		err := ValidateStruct(&entry{From: "yesterday", Website: "not a url"})
		msgs := fieldMessages(t, err)

		assert.Equal(t, "From date is invalid", msgs["from"])
		assert.Equal(t, "Not a valid URL", msgs["website"])

		assert.NoError(t, ValidateStruct(&entry{From: "2020-01-31"}))
		assert.NoError(t, ValidateStruct(&entry{From: "2020-01-31T10:00:00Z", Website: "https://example.com"}))
	})

	t.Run("byte limit counts encoded length", func(t *testing.T) {
		type secret struct {
			Password string `json:"password" validate:"max=30,maxbytes=72"`
		}

		assert.NoError(t, ValidateStruct(&secret{Password: strings.Repeat("é", 30)}))

		msgs := fieldMessages(t, ValidateStruct(&secret{Password: strings.Repeat("😀", 30)}))
		assert.Equal(t, "Password must be at most 72 bytes", msgs["password"])
	})

	t.Run("rejects non struct", func(t *testing.T) {
		assert.Error(t, ValidateStruct("string"))
		assert.NoError(t, ValidateStruct(nil))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2019-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/06/2019")
	assert.Error(t, err)
}

func TestErrorsAdd(t *testing.T) {
	var errs Errors
	errs = errs.Add("handle", "first", "required")
	errs = errs.Add("handle", "second", "min")
	errs = errs.Add("status", "Status field is required", "required")

	require.Len(t, errs, 2)
	assert.Equal(t, "first", errs[0].Message)
	assert.Equal(t, "handle: first; status: Status field is required", errs.Error())
}
