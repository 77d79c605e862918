package authkit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.client.StoreTokens(context.Background(), &oauth2.TokenResponse{
		AccessToken:  "access-0",
		RefreshToken: "refresh-0",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}))
}

func TestRefreshAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)

	var refreshed []events.Event
	f.client.Events().Subscribe(events.TokenRefreshed, func(e events.Event) { refreshed = append(refreshed, e) })

	tr, err := f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-1", tr.AccessToken)

	require.Equal(t, 1, f.countTokenCalls())
	form := f.tokenForms[0]
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "refresh-0", form.Get("refresh_token"))
	require.Equal(t, testClientID, form.Get("client_id"))

	require.Len(t, refreshed, 1)
	require.Equal(t, "access-1", refreshed[0].Tokens.AccessToken)

	token, err := f.client.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-1", token)
}

func TestRefreshCooldownRejectsSecondAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)

	_, err := f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)

	_, err = f.client.RefreshAccessToken(ctx)
	require.Error(t, err)
	require.True(t, autherr.IsKind(err, autherr.KindToken))

	var ae *autherr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, autherr.CodeRateLimited, ae.Code)

	// The rejection happened before any network traffic.
	require.Equal(t, 1, f.countTokenCalls())
}

func TestRefreshCooldownAllowsAfterWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)

	_, err := f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)

	f.advance(1100 * time.Millisecond)

	tr, err := f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", tr.AccessToken)
	require.Equal(t, 2, f.countTokenCalls())
}

func TestRefreshCooldownRejectionDoesNotConsumeWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)

	_, err := f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)

	// Hammering the gate must not push the window out.
	for i := 0; i < 5; i++ {
		_, err = f.client.RefreshAccessToken(ctx)
		require.Error(t, err)
	}

	f.advance(1100 * time.Millisecond)

	_, err = f.client.RefreshAccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, f.countTokenCalls())
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.client.RefreshAccessToken(ctx)
	require.Error(t, err)
	require.True(t, autherr.IsKind(err, autherr.KindToken))

	var ae *autherr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, autherr.CodeMissingRefreshToken, ae.Code)
	require.Zero(t, f.countTokenCalls())
}

func TestRefreshFailureEmitsTokenExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)
	f.tokenStatus = 400

	var expired []events.Event
	f.client.Events().Subscribe(events.TokenExpired, func(e events.Event) { expired = append(expired, e) })

	_, err := f.client.RefreshAccessToken(ctx)
	require.Error(t, err)
	require.Len(t, expired, 1)
	require.Error(t, expired[0].Err)

	// The previous tokens survive a failed refresh.
	token, tokenErr := f.client.AccessToken(ctx)
	require.NoError(t, tokenErr)
	require.Equal(t, "access-0", token)
}

func TestRefreshConcurrentCallersShareOneAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedSession(t, f)
	f.tokenDelay = 200 * time.Millisecond

	const callers = 8
	results := make([]*oauth2.TokenResponse, callers)
	errs := make([]error, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = f.client.RefreshAccessToken(ctx)
		}(i)
	}
	start.Done()
	done.Wait()

	require.Equal(t, 1, f.countTokenCalls())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "access-1", results[i].AccessToken)
	}
}
