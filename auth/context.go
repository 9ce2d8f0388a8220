package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/users"
)

// State is the observable session state the UI layer renders from.
type State struct {
	User          *users.Profile
	Authenticated bool
	Loading       bool
}

// Listener receives state snapshots. Listeners are invoked synchronously
// from the mutating operation, after the state change is applied.
type Listener func(State)

// Context is the process-wide session state holder: it runs the bootstrap at
// startup, funnels login/signup/logout through the Service, and notifies
// subscribers on every transition. It replaces ambient globals with an
// injectable object.
type Context struct {
	svc    *Service
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]Listener
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithContextLogger sets the context's logger.
func WithContextLogger(logger zerolog.Logger) ContextOption {
	return func(c *Context) {
		c.logger = logger
	}
}

// NewContext creates a session Context in the loading state. Call Bootstrap
// to resolve it.
func NewContext(svc *Service, options ...ContextOption) (*Context, error) {
	if svc == nil {
		return nil, errors.New("[NewContext] auth service is required")
	}
	c := &Context{
		svc:    svc,
		logger: zerolog.Nop(),
		state:  State{Loading: true},
		subs:   make(map[int]Listener),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Subscribe registers a listener and returns its unsubscribe function. The
// listener immediately receives the current state.
func (c *Context) Subscribe(listener Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = listener
	current := c.state
	c.mu.Unlock()

	listener(current)
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// State returns the current session state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Bootstrap resolves the initial state from the persisted session. Loading
// always ends, whatever the outcome: a storage failure reads as logged out,
// never as a crash or a stuck spinner.
func (c *Context) Bootstrap(ctx context.Context) {
	sess, err := c.svc.Bootstrap(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session bootstrap failed, starting unauthenticated")
	}
	if err != nil || sess == nil {
		c.setState(State{})
		return
	}
	c.setState(State{User: sess.User, Authenticated: true})
}

// Login authenticates and flips the state to authenticated on success.
// Errors are re-thrown to the caller for display after the state settles.
func (c *Context) Login(ctx context.Context, email, password string) (*Result, error) {
	result, err := c.svc.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setState(State{User: result.User, Authenticated: true})
	return result, nil
}

// Signup registers and, like Login, leaves the user authenticated.
func (c *Context) Signup(ctx context.Context, params SignupParams) (*Result, error) {
	result, err := c.svc.Signup(ctx, params)
	if err != nil {
		return nil, err
	}
	c.setState(State{User: result.User, Authenticated: true})
	return result, nil
}

// Logout never fails from the caller's point of view: a cleanup error is
// logged and the in-memory state is cleared regardless.
func (c *Context) Logout(ctx context.Context) {
	if err := c.svc.Logout(ctx); err != nil {
		c.logger.Err(err).Msg("logout cleanup failed")
	}
	c.setState(State{})
}

// UpdateUser replaces the in-memory profile only. Persisted session data is
// untouched; the next refresh or login re-syncs it from the server.
func (c *Context) UpdateUser(user *users.Profile) {
	c.mu.Lock()
	c.state.User = user
	state := c.state
	listeners := c.listeners()
	c.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

// RefreshSession re-runs the bootstrap against the current store contents.
func (c *Context) RefreshSession(ctx context.Context) {
	c.mu.Lock()
	c.state.Loading = true
	state := c.state
	listeners := c.listeners()
	c.mu.Unlock()
	for _, l := range listeners {
		l(state)
	}

	c.Bootstrap(ctx)
}

func (c *Context) setState(state State) {
	c.mu.Lock()
	c.state = state
	listeners := c.listeners()
	c.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

// listeners snapshots the subscriber set; callers must hold c.mu.
func (c *Context) listeners() []Listener {
	out := make([]Listener, 0, len(c.subs))
	for _, l := range c.subs {
		out = append(out, l)
	}
	return out
}
