package identity

import "sync"

// Observer tracks the current authenticated user id, nil when signed out.
// Subscribers are invoked on every identity change, in registration order.
type Observer struct {
	mu     sync.Mutex
	userID *string
	subs   []func(userID *string)
}

func NewObserver() *Observer {
	return &Observer{}
}

// Current returns the active user id, or nil for a guest.
func (o *Observer) Current() *string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.userID
}

// Set records a login or logout event. Subscribers only fire when the
// identity actually changes.
func (o *Observer) Set(userID *string) {
	o.mu.Lock()
	if equalID(o.userID, userID) {
		o.mu.Unlock()
		return
	}
	o.userID = userID
	subs := make([]func(*string), len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, fn := range subs {
		fn(userID)
	}
}

// Subscribe registers fn for identity-change events.
func (o *Observer) Subscribe(fn func(userID *string)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, fn)
}

func equalID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
