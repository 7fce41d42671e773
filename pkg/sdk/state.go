package sdk

import (
	"log"
	"sync"
)

// Cell is an observable value. Reads are open to everyone; writes are
// reserved to the package, so the owner decides who may mutate it.
type Cell[T any] struct {
	mu        sync.RWMutex
	value     T
	nextID    int
	listeners map[int]func(T)
}

func newCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, listeners: make(map[int]func(T))}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cell[T]) set(v T) {
	c.mu.Lock()
	c.value = v
	fns := make([]func(T), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// AuthSnapshot is a consistent copy of the three auth cells.
type AuthSnapshot struct {
	LoggedIn bool
	Username *string
	UserID   *int64
}

// AuthStateReader is the read side of AuthState handed to views.
type AuthStateReader interface {
	Snapshot() AuthSnapshot
	Subscribe(fn func(AuthSnapshot)) (cancel func())
}

// AuthState is the observable view of the session that the rest of the
// client renders from. The store stays the source of truth; AuthState is
// resynchronised through Init, Login, Logout and UpdateUsername only.
type AuthState struct {
	svc *AuthService

	// mu serialises the writers. Listeners must not call a writer.
	mu       sync.Mutex
	loggedIn *Cell[bool]
	username *Cell[*string]
	userID   *Cell[*int64]

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(AuthSnapshot)
}

var _ AuthStateReader = (*AuthState)(nil)

// NewAuthState creates a logged-out AuthState backed by svc. Call Init to
// load the persisted session.
func NewAuthState(svc *AuthService) *AuthState {
	return &AuthState{
		svc:      svc,
		loggedIn: newCell(false),
		username: newCell[*string](nil),
		userID:   newCell[*int64](nil),
		subs:     make(map[int]func(AuthSnapshot)),
	}
}

// LoggedIn is the logged-in cell.
func (a *AuthState) LoggedIn() *Cell[bool] { return a.loggedIn }

// Username is the username cell; nil when unknown.
func (a *AuthState) Username() *Cell[*string] { return a.username }

// UserID is the user id cell; nil when unknown.
func (a *AuthState) UserID() *Cell[*int64] { return a.userID }

// Snapshot returns the current values of all cells.
func (a *AuthState) Snapshot() AuthSnapshot {
	return AuthSnapshot{
		LoggedIn: a.loggedIn.Get(),
		Username: a.username.Get(),
		UserID:   a.userID.Get(),
	}
}

// Subscribe calls fn with a full snapshot after each writer completes.
func (a *AuthState) Subscribe(fn func(AuthSnapshot)) (cancel func()) {
	a.subMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.subMu.Unlock()

	return func() {
		a.subMu.Lock()
		delete(a.subs, id)
		a.subMu.Unlock()
	}
}

// Init loads the state from the persisted session at process start.
func (a *AuthState) Init() {
	a.sync()
}

// Login resynchronises after the AuthService has stored a fresh token pair.
func (a *AuthState) Login() {
	a.sync()
}

// Logout clears the session and resets every cell, even when the store
// was already empty.
func (a *AuthState) Logout() error {
	err := a.svc.Logout()
	if err != nil {
		log.Printf("failed to clear session: %v", err)
	}
	a.apply(false, nil, nil)
	return err
}

// Expire ends a session the server rejected. Only the token slots are
// cleared, so a remembered redirect survives until the next login.
func (a *AuthState) Expire() error {
	err := ClearTokens(a.svc.Store())
	if err != nil {
		log.Printf("failed to clear expired tokens: %v", err)
	}
	a.apply(false, nil, nil)
	return err
}

// UpdateUsername reflects a profile rename without touching the session.
func (a *AuthState) UpdateUsername(name string) {
	a.mu.Lock()
	a.username.set(&name)
	snap := a.Snapshot()
	a.mu.Unlock()
	a.notify(snap)
}

func (a *AuthState) sync() {
	if a.svc.AccessToken() == "" {
		a.apply(false, nil, nil)
		return
	}

	var username *string
	if name, ok := a.svc.Username(); ok {
		username = &name
	}
	var userID *int64
	if id, ok := a.svc.UserID(); ok {
		userID = &id
	}
	a.apply(true, username, userID)
}

func (a *AuthState) apply(loggedIn bool, username *string, userID *int64) {
	a.mu.Lock()
	a.username.set(username)
	a.userID.set(userID)
	a.loggedIn.set(loggedIn)
	snap := a.Snapshot()
	a.mu.Unlock()
	a.notify(snap)
}

func (a *AuthState) notify(snap AuthSnapshot) {
	a.subMu.Lock()
	fns := make([]func(AuthSnapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
