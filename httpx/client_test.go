package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-authkit/httpx"
	"github.com/stretchr/testify/require"
)

func TestPostFormEncodesBody(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Get("grant_type")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := httpx.New()
	form := url.Values{}
	form.Set("grant_type", "authorization_code")

	resp, err := client.PostForm(context.Background(), server.URL+"/oauth/token", form)
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, "authorization_code", gotBody)
}

func TestBearerOnlyOnAllowListedPaths(t *testing.T) {
	headers := map[string]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers[r.URL.Path] = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := httpx.New(
		httpx.WithBearerAuth(func(context.Context) (string, error) {
			return "token-a", nil
		}, "/oauth/userinfo"),
	)

	_, err := client.Get(context.Background(), server.URL+"/oauth/userinfo")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), server.URL+"/other/endpoint")
	require.NoError(t, err)

	require.Equal(t, "Bearer token-a", headers["/oauth/userinfo"])
	require.Empty(t, headers["/other/endpoint"])
}

func TestRefreshReplayOn401(t *testing.T) {
	var tokensSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tokensSeen = append(tokensSeen, auth)
		if auth != "Bearer token-fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"sub":"user-1"}`))
	}))
	defer server.Close()

	refreshCalls := 0
	client := httpx.New(
		httpx.WithBearerAuth(func(context.Context) (string, error) {
			return "token-stale", nil
		}, "/oauth/userinfo"),
		httpx.WithRefresh(func(context.Context) (string, error) {
			refreshCalls++
			return "token-fresh", nil
		}),
	)

	resp, err := client.Get(context.Background(), server.URL+"/oauth/userinfo")
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, 1, refreshCalls)
	require.Equal(t, []string{"Bearer token-stale", "Bearer token-fresh"}, tokensSeen)
}

func TestSecond401NotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := httpx.New(
		httpx.WithBearerAuth(func(context.Context) (string, error) {
			return "token-stale", nil
		}, "/oauth/userinfo"),
		httpx.WithRefresh(func(context.Context) (string, error) {
			return "token-still-bad", nil
		}),
	)

	resp, err := client.Get(context.Background(), server.URL+"/oauth/userinfo")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 2, requests)
}

func TestCustomHeadersApplied(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-App-Version")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := httpx.New(httpx.WithHeaders(map[string]string{"X-App-Version": "1.2.3"}))
	_, err := client.Get(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	require.Equal(t, "1.2.3", got)
}

func TestFailedRefreshReturnsOriginal401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := httpx.New(
		httpx.WithBearerAuth(func(context.Context) (string, error) {
			return "token-stale", nil
		}, "/oauth/userinfo"),
		httpx.WithRefresh(func(context.Context) (string, error) {
			return "", context.DeadlineExceeded
		}),
	)

	resp, err := client.Get(context.Background(), server.URL+"/oauth/userinfo")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
