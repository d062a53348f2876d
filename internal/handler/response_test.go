package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusNotFound, "order_not_found", "order not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"order_not_found","message":"order not found"}`, rec.Body.String())
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Side     string `json:"side"`
		Quantity int64  `json:"quantity"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"side":"buy","quantity":10}`))

		var p payload
		require.NoError(t, ParseJSON(req, &p))
		assert.Equal(t, "buy", p.Side)
		assert.Equal(t, int64(10), p.Quantity)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"side":`))

		var p payload
		err := ParseJSON(req, &p)
		require.Error(t, err)
		assert.Equal(t, "request body must be valid JSON", err.Error())
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"side":"buy","bogus":1}`))

		var p payload
		assert.Error(t, ParseJSON(req, &p))
	})
}

// A malformed body through the router reports a body error, not a
// content-type error: the middleware already admitted the request.
func TestSubmitOrder_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/orders", "application/json", strings.NewReader(`{"side":`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "request body must be valid JSON", body["message"])
}
