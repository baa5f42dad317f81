package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailerSend(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mailer := NewResendMailer("key123", "noreply@example.com")
	mailer.endpoint = server.URL

	err := mailer.Send(context.Background(), "alice@example.com", "Hello", "<b>hi</b>")
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", got["from"])
	assert.Equal(t, []interface{}{"alice@example.com"}, got["to"])
	assert.Equal(t, "Hello", got["subject"])
}

func TestResendMailerAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid sender"}`))
	}))
	defer server.Close()

	mailer := NewResendMailer("key123", "noreply@example.com")
	mailer.endpoint = server.URL

	err := mailer.Send(context.Background(), "alice@example.com", "Hello", "hi")
	assert.ErrorContains(t, err, "invalid sender")
}

func TestResendMailerNoKey(t *testing.T) {
	mailer := NewResendMailer("", "noreply@example.com")
	assert.Error(t, mailer.Send(context.Background(), "a@b.c", "s", "h"))
}
