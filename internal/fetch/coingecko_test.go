package fetch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/pkg/exception"
)

func TestFetchSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		assert.Equal(t, "250", r.URL.Query().Get("per_page"))
		assert.Equal(t, "false", r.URL.Query().Get("sparkline"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","current_price":42000.5,"roi":null},
			{"id":"ethereum","current_price":2200.1,"roi":{"times":2,"currency":"usd"}}
		]`))
	}))
	defer server.Close()

	client := New(Option{BaseURL: server.URL})
	batch, err := client.Fetch(t.Context())
	require.NoError(t, err)

	require.Len(t, batch, 2)
	assert.Equal(t, "bitcoin", batch[0]["id"])
	assert.Equal(t, 42000.5, batch[0]["current_price"])
	assert.Nil(t, batch[0]["roi"])
	assert.IsType(t, map[string]any{}, batch[1]["roi"])
}

func TestFetchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(Option{BaseURL: server.URL})
	_, err := client.Fetch(t.Context())
	require.ErrorIs(t, err, exception.ErrUnexpectedStatus)
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer server.Close()

	client := New(Option{BaseURL: server.URL})
	_, err := client.Fetch(t.Context())
	require.ErrorIs(t, err, exception.ErrMalformedPayload)
}

func TestFetchEmptySnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(Option{BaseURL: server.URL})
	batch, err := client.Fetch(t.Context())
	require.NoError(t, err)
	assert.Empty(t, batch)
}
