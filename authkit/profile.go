package authkit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/users"
)

// CurrentUser returns the authenticated user's profile. The cached copy is
// served while younger than five minutes unless forceRefresh; a fetch
// failure propagates, it never falls back to the stale cache.
func (c *Client) CurrentUser(ctx context.Context, forceRefresh bool) (*users.User, error) {
	if !forceRefresh {
		if user, ok := c.cachedProfile(ctx); ok {
			return user, nil
		}
	}
	return c.fetchProfile(ctx)
}

func (c *Client) cachedProfile(ctx context.Context) (*users.User, bool) {
	cachedAtStr, ok, err := c.storageGet(ctx, storage.KeyProfileCachedAt)
	if err != nil || !ok {
		return nil, false
	}
	unix, parseErr := strconv.ParseInt(cachedAtStr, 10, 64)
	if parseErr != nil {
		return nil, false
	}
	if c.nowTime().Sub(time.Unix(unix, 0)) >= profileCacheTTL {
		return nil, false
	}

	raw, ok, err := c.storageGet(ctx, storage.KeyUserProfile)
	if err != nil || !ok {
		return nil, false
	}
	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// fetchProfile GETs the userinfo endpoint and overwrites the cache and its
// timestamp.
func (c *Client) fetchProfile(ctx context.Context) (*users.User, error) {
	resp, err := c.getJSON(ctx, c.endpointURL(c.cfg.Endpoints.UserInfo), "profile fetch")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, autherr.FromResponse(resp.StatusCode, resp.Body, "profile fetch failed")
	}

	var user users.User
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, autherr.Wrap(autherr.KindNetwork, err, "profile response malformed")
	}

	if err := c.writeProfileCache(ctx, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// writeProfileCache persists the profile; touchTimestamp also resets the
// freshness window.
func (c *Client) writeProfileCache(ctx context.Context, user *users.User, touchTimestamp bool) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return autherr.Wrap(autherr.KindStorage, err, "profile serialization failed")
	}
	if err := c.storageSet(ctx, storage.KeyUserProfile, string(raw)); err != nil {
		return err
	}
	if touchTimestamp {
		return c.storageSet(ctx, storage.KeyProfileCachedAt, strconv.FormatInt(c.nowTime().Unix(), 10))
	}
	return nil
}

// UpdateProfile PATCHes partial profile fields. The cached profile is
// overwritten but its timestamp is not: freshness keeps counting from the
// last full fetch. Emits user_updated.
func (c *Client) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	resp, err := c.http.PatchJSON(ctx, c.endpointURL(c.cfg.Endpoints.UserInfo), update)
	if err != nil {
		return nil, c.networkFailure(err, "profile update")
	}
	if !resp.OK() {
		return nil, autherr.FromResponse(resp.StatusCode, resp.Body, "profile update failed")
	}

	var user users.User
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, autherr.Wrap(autherr.KindNetwork, err, "profile update response malformed")
	}

	if err := c.writeProfileCache(ctx, &user, false); err != nil {
		return nil, err
	}

	c.bus.Emit(events.Event{Type: events.UserUpdated, User: &user})
	return &user, nil
}
