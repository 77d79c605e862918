package events_test

import (
	"testing"

	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/users"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndEmit(t *testing.T) {
	bus := events.New()

	var got []events.Event
	bus.Subscribe(events.UserLoggedIn, func(e events.Event) {
		got = append(got, e)
	})

	user := &users.User{ID: "user-1", Email: "john.doe@example.com"}
	bus.Emit(events.Event{Type: events.UserLoggedIn, User: user})

	require.Len(t, got, 1)
	require.Equal(t, events.UserLoggedIn, got[0].Type)
	require.Same(t, user, got[0].User)
}

func TestEmitOnlyMatchingType(t *testing.T) {
	bus := events.New()

	calls := 0
	bus.Subscribe(events.TokenRefreshed, func(events.Event) { calls++ })

	bus.Emit(events.Event{Type: events.UserLoggedOut})
	require.Zero(t, calls)

	bus.Emit(events.Event{Type: events.TokenRefreshed})
	require.Equal(t, 1, calls)
}

func TestUnsubscribe(t *testing.T) {
	bus := events.New()

	calls := 0
	id := bus.Subscribe(events.AuthError, func(events.Event) { calls++ })

	bus.Emit(events.Event{Type: events.AuthError})
	bus.Unsubscribe(id)
	bus.Emit(events.Event{Type: events.AuthError})

	require.Equal(t, 1, calls)
}

func TestOnceFiresOnce(t *testing.T) {
	bus := events.New()

	calls := 0
	bus.Once(events.UserLoggedOut, func(events.Event) { calls++ })

	bus.Emit(events.Event{Type: events.UserLoggedOut})
	bus.Emit(events.Event{Type: events.UserLoggedOut})

	require.Equal(t, 1, calls)
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	bus := events.New()

	var order []int
	bus.Subscribe(events.UserUpdated, func(events.Event) { order = append(order, 1) })
	bus.Subscribe(events.UserUpdated, func(events.Event) { order = append(order, 2) })

	bus.Emit(events.Event{Type: events.UserUpdated})
	require.Equal(t, []int{1, 2}, order)
}
