package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/logging"
)

var (
	// ErrInvalidCredentials is returned by Login when the backend rejects
	// the username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired marks a credential the backend no longer accepts.
	// The session recovers by logging itself out; the error shows up in
	// logs, not in return values.
	ErrSessionExpired = errors.New("session expired")
)

// State is the session lifecycle position.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateRestoring
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateAuthenticating:
		return "authenticating"
	case StateRestoring:
		return "restoring"
	case StateLoggedIn:
		return "logged-in"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a read-only view of the session handed to subscribers.
type Snapshot struct {
	State    State
	Token    string
	Identity *api.Identity
}

// Session owns the process-wide authentication state: the bearer token, the
// identity behind it, and the durable copy on disk. It is the only writer of
// the shared API client's auth header and of the token store; everything
// else reads session state through Snapshot or the getters.
//
// Every token change is mirrored into the API client before subscribers are
// notified, so by the time any other component reacts to a transition its
// requests already carry the new token.
type Session struct {
	client *api.Client
	store  *TokenStore

	// loginMu serializes whole Login calls. A second Login waits for the
	// first to finish rather than cancelling it.
	loginMu sync.Mutex

	mu       sync.Mutex
	state    State
	token    string
	identity *api.Identity
	gen      uint64
	subs     []func(Snapshot)
}

// NewSession creates a logged-out session wired to the shared client and
// the token store.
func NewSession(client *api.Client, store *TokenStore) *Session {
	return &Session{
		client: client,
		store:  store,
		state:  StateLoggedOut,
	}
}

// Subscribe registers fn to run after every completed state transition,
// in the goroutine that drove the transition.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Login exchanges credentials for a token and refreshes the identity with
// it. The returned error wraps ErrInvalidCredentials when the backend
// rejected the credentials; transport failures surface as plain errors.
// Either way a failed Login leaves the previous credential untouched.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	log := logging.Get()

	prevState, prevGen := s.beginAuth()

	tr, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.endAuth(prevState, prevGen)
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			log.Info().Str("username", username).Int("status", apiErr.StatusCode).Msg("login rejected")
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Detail)
		}
		log.Warn().Str("username", username).Err(err).Msg("login transport failure")
		return fmt.Errorf("login: %w", err)
	}

	log.Info().Str("username", username).Msg("login accepted")
	gen := s.adoptToken(tr.AccessToken, true)
	s.refreshIdentity(ctx, gen)
	return nil
}

// Logout clears the durable token, the in-memory credential and the
// identity. It never issues a network call and is idempotent.
func (s *Session) Logout() {
	s.mu.Lock()
	snap, subs := s.logoutLocked()
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		logging.Get().Error().Err(err).Msg("clearing token store")
	}
	notify(subs, snap)
}

// logoutLocked clears the credential while s.mu is held: client header,
// in-memory state, identity. Bumping the generation invalidates any refresh
// still in flight. Storage cleanup and notification happen after unlock.
func (s *Session) logoutLocked() (Snapshot, []func(Snapshot)) {
	s.client.SetToken("")
	s.token = ""
	s.identity = nil
	s.gen++
	s.state = StateLoggedOut
	return s.snapshotLocked()
}

// Restore resumes the previous session from durable storage, if any.
// Returns true when the session ends logged in. A token that self-reports
// expiry is discarded without a network round trip.
func (s *Session) Restore(ctx context.Context) bool {
	log := logging.Get()

	token, err := s.store.Load()
	if err != nil {
		log.Error().Err(err).Msg("loading stored token")
		return false
	}
	if token == "" {
		return false
	}

	if exp, ok := TokenExpiry(token); ok && time.Now().After(exp) {
		log.Info().Time("expired_at", exp).Msgf("stored token rejected: %v", ErrSessionExpired)
		if err := s.store.Clear(); err != nil {
			log.Error().Err(err).Msg("clearing token store")
		}
		return false
	}

	gen := s.adoptToken(token, false)
	s.refreshIdentity(ctx, gen)
	return s.LoggedIn()
}

// beginAuth enters StateAuthenticating and reports what to revert to if
// the attempt fails.
func (s *Session) beginAuth() (State, uint64) {
	s.mu.Lock()
	prevState, prevGen := s.state, s.gen
	s.state = StateAuthenticating
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
	return prevState, prevGen
}

// endAuth reverts a failed login attempt. The credential was never touched;
// if a concurrent Logout bumped the generation meanwhile, its state wins.
func (s *Session) endAuth(prevState State, prevGen uint64) {
	s.mu.Lock()
	if s.gen != prevGen {
		s.mu.Unlock()
		return
	}
	s.state = prevState
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// adoptToken installs a new credential: API client first, then the in-memory
// state, then durable storage, then subscribers. The identity is cleared
// until the follow-up refresh validates the token. Returns the generation
// owning this credential.
func (s *Session) adoptToken(token string, persist bool) uint64 {
	s.mu.Lock()
	s.client.SetToken(token)
	s.token = token
	s.identity = nil
	s.gen++
	gen := s.gen
	s.state = StateRestoring
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	if persist {
		if err := s.store.Save(token); err != nil {
			// Session stays usable in memory; it just won't survive a restart.
			logging.Get().Error().Err(err).Msg("persisting token")
		}
	}
	notify(subs, snap)
	return gen
}

// refreshIdentity validates the live credential against the who-am-I
// endpoint. The client attaches whatever token is current at request time,
// so a credential replaced mid-flight yields a generation mismatch and the
// result is discarded. Any failure logs the session out.
func (s *Session) refreshIdentity(ctx context.Context, gen uint64) {
	log := logging.Get()

	id, err := s.client.Me(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		log.Debug().Msg("identity refresh superseded, discarding result")
		return
	}
	if err != nil {
		// Must stay under the generation check's lock hold; a concurrent
		// login could otherwise install a credential between check and clear.
		snap, subs := s.logoutLocked()
		s.mu.Unlock()
		if api.IsStatus(err, http.StatusUnauthorized) {
			log.Info().Msgf("identity refresh rejected: %v", ErrSessionExpired)
		} else {
			log.Warn().Err(err).Msg("identity refresh failed")
		}
		if clearErr := s.store.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("clearing token store")
		}
		notify(subs, snap)
		return
	}
	s.identity = id
	s.state = StateLoggedIn
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	log.Info().Str("username", id.Username).Str("role", id.Role).Msg("identity refreshed")
	notify(subs, snap)
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

// Token returns the current credential, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns a copy of the authenticated identity, or nil.
func (s *Session) Identity() *api.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}

// CurrentState returns the session lifecycle position.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoggedIn reports whether the session holds a validated credential.
func (s *Session) LoggedIn() bool {
	return s.CurrentState() == StateLoggedIn
}

func (s *Session) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snap := Snapshot{
		State:    s.state,
		Token:    s.token,
		Identity: copyIdentity(s.identity),
	}
	subs := append([]func(Snapshot)(nil), s.subs...)
	return snap, subs
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func copyIdentity(id *api.Identity) *api.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// TokenExpiry reports the expiry claim of a JWT credential without
// verifying its signature. ok is false for opaque tokens and for JWTs
// without an exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
