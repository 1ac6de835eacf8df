package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"buildsync-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorMapsStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.Validation("name is required"), http.StatusBadRequest},
		{apperr.NotFound("task", "t-1"), http.StatusNotFound},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Unauthorized("bad token"), http.StatusUnauthorized},
		{apperr.TenantBoundary("task", "t-1", "org-1"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, false)

		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.err.Error(), body.Message)
		assert.Empty(t, body.Stack)
	}
}

func TestWriteErrorStackOnlyInDebug(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), assert.AnError, true)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Stack)

	// client errors never carry a stack
	rec = httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperr.Validation("x"), true)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Stack)
}

func TestParseJSONBody(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada"}`))
	require.NoError(t, ParseJSONBody(r, &v))
	assert.Equal(t, "Ada", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.ErrorIs(t, ParseJSONBody(r, &v), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.ErrorIs(t, ParseJSONBody(r, &v), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a long name"}`))
	r.Body = http.MaxBytesReader(httptest.NewRecorder(), r.Body, 4)
	err := ParseJSONBody(r, &v)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")
}

func TestWriteMutationResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteMutationResponse(rec, "p-1")

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"id":"p-1"}`, rec.Body.String())
}
