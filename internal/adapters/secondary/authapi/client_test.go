package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellos-packages/internal/core/domain"
)

func TestSignInAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/accounts:signInAnonymously", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"localId": "user-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	identity, err := client.SignInAnonymous(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("user-1"), identity)
}

func TestSignInWithToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithToken", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tok-123", payload["token"])
		json.NewEncoder(w).Encode(map[string]string{"localId": "user-2"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	identity, err := client.SignInWithToken(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("user-2"), identity)
}

func TestSignInNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.SignInAnonymous(context.Background())
	assert.Error(t, err)
}

func TestSignInMissingLocalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.SignInAnonymous(context.Background())
	assert.Error(t, err)
}

func TestSignInUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.SignInAnonymous(context.Background())
	assert.Error(t, err)
}
