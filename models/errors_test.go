package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapAndCode(t *testing.T) {
	cause := errors.New("redis down")
	err := fmt.Errorf("add item: %w", PersistenceError(cause, "failed to save cart"))

	assert.True(t, HasCode(err, CodePersistence))
	assert.False(t, HasCode(err, CodeValidation))
	assert.ErrorIs(t, err, cause)

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "failed to save cart", appErr.Message)
	assert.Contains(t, appErr.Error(), "redis down")
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, CodeValidation.HTTPStatus())
	assert.Equal(t, http.StatusPaymentRequired, CodePaymentDeclined.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, CodePersistence.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("SOMETHING").HTTPStatus())
}

func TestHasCodeOnPlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}
