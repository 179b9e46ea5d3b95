package tokens

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVend_PostsRequestAndReturnsToken(t *testing.T) {
	var got VendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("momento-token-abc\n"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	tok, err := c.Vend(context.Background(), VendRequest{
		UserID:    "user-1",
		CacheName: "interactive-labs",
		Scope:     ScopeSubscribe,
	})
	require.NoError(t, err)
	require.Equal(t, "momento-token-abc", tok)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, "interactive-labs", got.CacheName)
	require.Equal(t, DefaultExpiryMinutes, got.ExpiryMinutes)
	require.Equal(t, ScopeSubscribe, got.Scope)
}

func TestVend_ValidatesExpiryRange(t *testing.T) {
	c, err := NewClient("http://localhost:1")
	require.NoError(t, err)

	_, err = c.Vend(context.Background(), VendRequest{UserID: "u", ExpiryMinutes: 61})
	require.ErrorContains(t, err, "out of range")

	_, err = c.Vend(context.Background(), VendRequest{UserID: "u", ExpiryMinutes: -5})
	require.ErrorContains(t, err, "out of range")
}

func TestVend_RequiresUserID(t *testing.T) {
	c, err := NewClient("http://localhost:1")
	require.NoError(t, err)
	_, err = c.Vend(context.Background(), VendRequest{})
	require.ErrorContains(t, err, "user id is empty")
}

func TestVend_SurfacesEndpointErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "cache not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = c.Vend(context.Background(), VendRequest{UserID: "u"})
	require.ErrorContains(t, err, "404")
	require.ErrorContains(t, err, "cache not found")
}

func TestSource_MintsSubscribeScopedTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req VendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, ScopeSubscribe, req.Scope)
		_, _ = w.Write([]byte("tok"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	src := c.Source("user-1", "interactive-labs")
	tok, err := src(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok", tok)
}
