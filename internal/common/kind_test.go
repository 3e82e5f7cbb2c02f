package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := NotFound("File not found in database")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("storage unavailable", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPartialDelete_CarriesReconcileData(t *testing.T) {
	err := PartialDelete("id-1", "123-abc.txt", errors.New("db down"))

	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.True(t, e.Reconcile)
	assert.Equal(t, "id-1", e.RecordID)
	assert.Equal(t, "123-abc.txt", e.StorageKey)
	assert.True(t, errors.Is(err, ErrPartialDelete))
}

func TestValidationf(t *testing.T) {
	err := Validationf("Invalid file type: %s", "text/html")
	assert.Equal(t, "Invalid file type: text/html", err.Message)
	assert.Equal(t, KindValidation, err.Kind)
}
