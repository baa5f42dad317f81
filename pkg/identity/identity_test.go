package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session-data", r.URL.Path)
		if r.Header.Get("X-Session-ID") != "valid-session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"alice@example.com","name":"Alice","picture":"p.png","session_token":"tok123"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	data, err := client.ExchangeSession(context.Background(), "valid-session")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", data.Email)
	assert.Equal(t, "Alice", data.Name)
	assert.Equal(t, "tok123", data.SessionToken)

	_, err = client.ExchangeSession(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExchangeSessionNameFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"bob@example.com","session_token":"tok"}`))
	}))
	defer server.Close()

	data, err := NewClient(server.URL).ExchangeSession(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "bob", data.Name)
}
