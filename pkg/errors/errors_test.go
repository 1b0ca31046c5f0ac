package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAppErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		validation bool
		conflict   bool
		status     int
	}{
		{"not found", NewNotFoundError("node"), true, false, false, http.StatusNotFound},
		{"validation", NewValidationError("bad size"), false, true, false, http.StatusBadRequest},
		{"conflict", NewConflictError("exists"), false, false, true, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("connect: %w", NewConflictError("exists")), false, false, true, http.StatusConflict},
		{"plain error", stderrors.New("boom"), false, false, false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.conflict, IsConflict(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := NewConflictError("connection already exists").WithCode(CodeConnectionExists)
	assert.True(t, HasCode(err, CodeConnectionExists))
	assert.False(t, HasCode(err, CodeSelfLoop))
	assert.False(t, HasCode(stderrors.New("x"), CodeSelfLoop))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NewNotFoundError("project"), "load")
	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "load: project not found")

	cause := stderrors.New("disk full")
	internal := Wrap(cause, "save")
	assert.True(t, IsType(internal, ErrorTypeInternal))
	assert.ErrorIs(t, internal, cause)
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/x", nil)
	h.Handle(rec, req, NewNotFoundError("project").WithCode("PROJECT_MISSING"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, string(ErrorTypeNotFound), body.Type)
	assert.Equal(t, "PROJECT_MISSING", body.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, req, stderrors.New("secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}
