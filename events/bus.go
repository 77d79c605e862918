// Package events provides the in-process lifecycle event bus the Session
// Core emits on. Event names form a closed enumeration and every payload is
// carried in the typed Event struct, one field per payload shape.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/users"
)

// Type names a lifecycle event.
type Type string

const (
	TokenRefreshed Type = "token_refreshed"
	TokenExpired   Type = "token_expired"
	AuthError      Type = "auth_error"
	UserLoggedIn   Type = "user_logged_in"
	UserLoggedOut  Type = "user_logged_out"
	UserRegistered Type = "user_registered"
	UserUpdated    Type = "user_updated"
	NetworkError   Type = "network_error"
)

// Event is a tagged union keyed by Type. Exactly the fields relevant to the
// event's Type are set:
//
//	TokenRefreshed            -> Tokens
//	TokenExpired, AuthError,
//	NetworkError              -> Err
//	UserLoggedIn, UserUpdated -> User
//	UserRegistered            -> Registration
//	UserLoggedOut             -> (no payload)
type Event struct {
	Type         Type
	Tokens       *oauth2.TokenResponse
	User         *users.User
	Registration *users.RegistrationResponse
	Err          error
}

// Handler receives emitted events. Handlers run synchronously on the
// emitting goroutine, in subscription order per event type.
type Handler func(Event)

// SubscriptionID identifies a registered handler for later removal.
type SubscriptionID string

type subscription struct {
	id      SubscriptionID
	handler Handler
	once    bool
}

// Bus is a goroutine-safe publish/subscribe bus over the closed event set.
// The zero value is not usable; construct with New.
type Bus struct {
	mu   sync.RWMutex
	subs map[Type][]subscription
}

func New() *Bus {
	return &Bus{subs: make(map[Type][]subscription)}
}

// Subscribe registers a handler for an event type and returns its ID.
func (b *Bus) Subscribe(t Type, h Handler) SubscriptionID {
	return b.add(t, h, false)
}

// Once registers a handler that is removed after its first invocation.
func (b *Bus) Once(t Type, h Handler) SubscriptionID {
	return b.add(t, h, true)
}

func (b *Bus) add(t Type, h Handler, once bool) SubscriptionID {
	id := SubscriptionID(uuid.New().String())
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], subscription{id: id, handler: h, once: once})
	return id
}

// Unsubscribe removes a handler by ID. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, subs := range b.subs {
		for i, s := range subs {
			if s.id == id {
				b.subs[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers an event to every handler registered for its type. Handlers
// registered with Once are removed before their invocation, so re-emitting
// from inside a handler cannot trigger them twice.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	subs := b.subs[e.Type]
	handlers := make([]Handler, 0, len(subs))
	remaining := subs[:0:0]
	for _, s := range subs {
		handlers = append(handlers, s.handler)
		if !s.once {
			remaining = append(remaining, s)
		}
	}
	b.subs[e.Type] = remaining
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
