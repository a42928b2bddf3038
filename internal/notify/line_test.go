package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLINESendText(t *testing.T) {
	var got pushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	l := NewLINE("secret", srv.URL)
	require.NoError(t, l.SendText(context.Background(), "U123", "🔔 เตือนงาน"))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "U123", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "text", got.Messages[0].Type)
	assert.Equal(t, "🔔 เตือนงาน", got.Messages[0].Text)
}

func TestLINESendText_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authentication failed"}`))
	}))
	defer srv.Close()

	err := NewLINE("bad", srv.URL).SendText(context.Background(), "U123", "hi")
	var ge *GatewayError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, http.StatusUnauthorized, ge.StatusCode)
	assert.Contains(t, ge.Body, "Authentication failed")
}

func TestLINESendText_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewLINE("x", url).SendText(context.Background(), "U123", "hi")
	var ge *GatewayError
	require.True(t, errors.As(err, &ge))
	assert.Zero(t, ge.StatusCode)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{Log: zap.NewNop()}.SendText(context.Background(), "U", "m"))
	assert.NoError(t, Discard{}.SendText(context.Background(), "U", "m"))
}
