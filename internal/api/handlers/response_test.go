package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, "занято")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Code: http.StatusConflict, Message: "занято"}, body)
}

func TestRespondServiceUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondServiceUnavailable(rec)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &dst), ErrEmptyBody)
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-01-15&to=bad", nil)
	r = mux.SetURLVars(r, map[string]string{"providerId": "42", "date": "2025-01-20"})

	id, err := PathInt64(r, "providerId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	date, err := PathDate(r, "date")
	require.NoError(t, err)
	assert.Equal(t, 20, date.Day())

	from, err := QueryDate(r, "from")
	require.NoError(t, err)
	require.NotNil(t, from)
	assert.Equal(t, 15, from.Day())

	_, err = QueryDate(r, "to")
	assert.Error(t, err)

	missing, err := QueryDate(r, "status")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
