package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	err := NewDataFormatError("missing required columns: estimate", nil)
	assert.Equal(t, "[DATA_FORMAT] missing required columns: estimate", err.Error())
	assert.Equal(t, ErrTypeDataFormat, TypeOf(err))

	wrapped := fmt.Errorf("loading workbook: %w", err)
	assert.Equal(t, ErrTypeDataFormat, TypeOf(wrapped))
}

func TestIsNoRows(t *testing.T) {
	err := NewNoRowsError("no rows for indicator set")
	assert.True(t, IsNoRows(err))
	assert.True(t, IsNoRows(fmt.Errorf("prevalence: %w", err)))
	assert.False(t, IsNoRows(NewValidationError("bad input")))
	assert.False(t, IsNoRows(nil))
}

func TestTypeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}

func TestWithContext(t *testing.T) {
	err := NewInsufficientDataError("need at least two distinct years").
		WithContext("country", "Lebanon").
		WithContext("sex", "Male")

	assert.Equal(t, "Lebanon", err.Context["country"])
	assert.Equal(t, "Male", err.Context["sex"])
}

func TestAPIErrorFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: NewValidationError("bad"), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "not found", err: NewNotFoundError(`country "Atlantis"`), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "no rows", err: NewNoRowsError("empty"), status: http.StatusUnprocessableEntity, code: "NO_ROWS"},
		{name: "insufficient data", err: NewInsufficientDataError("short series"), status: http.StatusUnprocessableEntity, code: "INSUFFICIENT_DATA"},
		{name: "data format", err: NewDataFormatError("bad sheet", nil), status: http.StatusInternalServerError, code: "DATA_FORMAT"},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := APIErrorFrom(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.ErrorCode)
		})
	}
}
