package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusUnprocessableEntity,
		KindInvalid:          http.StatusBadRequest,
		KindAlreadyExists:    http.StatusBadRequest,
		KindAuthentication:   http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindMethodNotAllowed: http.StatusMethodNotAllowed,
		KindStorage:          http.StatusInternalServerError,
		KindInternal:         http.StatusInternalServerError,
		Kind("bogus"):        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.StatusCode(), "kind %s", kind)
	}
}

func TestPublicMessageHidesServerErrors(t *testing.T) {
	cause := errors.New("disk I/O error")

	storageErr := Storage("insert spending", cause)
	assert.Equal(t, GenericMessage, storageErr.PublicMessage())
	assert.ErrorIs(t, storageErr, cause)

	notFound := NotFound("Spending not found")
	assert.Equal(t, "Spending not found", notFound.PublicMessage())
}

func TestAsClassifiesWrappedErrors(t *testing.T) {
	base := AlreadyExists("User with email a@x.com already exists")
	wrapped := fmt.Errorf("register: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindAlreadyExists, got.Kind)
	assert.True(t, IsKind(wrapped, KindAlreadyExists))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindAlreadyExists}))

	plain := As(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode())

	assert.Nil(t, As(nil))
}

func TestValidationCarriesDetails(t *testing.T) {
	err := Validation(FieldError{Field: "amount", Message: "amount is required", Tag: "required"})
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode())
	require.Len(t, err.Details, 1)
	assert.Equal(t, "amount", err.Details[0].Field)
}
