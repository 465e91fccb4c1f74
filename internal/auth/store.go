// ABOUTME: Token store owning the access/refresh credential pair
// ABOUTME: Single writer for token state with singleflight refresh dedup

package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/papayal/wallet-cli/internal/client"
	"github.com/papayal/wallet-cli/internal/keystore"
)

// API is the narrow backend surface the store needs. *client.Client
// implements it; the binding happens after both sides exist.
type API interface {
	Login(ctx context.Context, p client.LoginParams) (*client.TokenPair, error)
	Signup(ctx context.Context, p client.SignupParams) (*client.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*client.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context) error
}

// Store is the single source of truth for the session credentials. The
// HTTP pipeline reads it through client.TokenSource and never mutates
// token state itself; all mutations funnel through this type.
type Store struct {
	mu       sync.Mutex
	access   string
	refresh  string
	hydrated bool
	loading  bool

	group singleflight.Group
	api   API
	ks    *keystore.Keystore
	log   *zap.Logger
}

// NewStore creates a store backed by the given keystore. Bind must be
// called before any operation that talks to the backend.
func NewStore(ks *keystore.Keystore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{ks: ks, log: log}
}

// Bind attaches the backend API. Separate from construction because the
// pipeline is built with the store as its token source.
func (s *Store) Bind(api API) {
	s.api = api
}

// AccessToken implements client.TokenSource. Synchronous, no I/O.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// Authenticated reports whether a full token pair is in memory.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != "" && s.refresh != ""
}

// Hydrated reports whether the initial bootstrap attempt has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// MarkHydrated records bootstrap completion. Transitions at most once.
func (s *Store) MarkHydrated() {
	s.mu.Lock()
	s.hydrated = true
	s.mu.Unlock()
}

// AuthLoading reports whether an explicit login/signup call is in flight.
func (s *Store) AuthLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// setTokens installs a full pair in memory and persists the refresh token.
// Either both tokens are set or, on persist failure, the error propagates
// so the caller can fall back to a cleared session.
func (s *Store) setTokens(pair *client.TokenPair) error {
	s.mu.Lock()
	s.access = pair.AccessToken
	s.refresh = pair.RefreshToken
	s.mu.Unlock()
	return s.ks.SaveRefreshToken(pair.RefreshToken)
}

func (s *Store) currentRefresh() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// Refresh implements client.TokenSource. Concurrent callers collapse onto
// one in-flight exchange and all receive its result. On any failure the
// session is cleared and "" is returned: an unusable refresh token cannot
// be recovered locally.
func (s *Store) Refresh(ctx context.Context) string {
	v, _, _ := s.group.Do("refresh", func() (any, error) {
		token := s.currentRefresh()
		if token == "" {
			return "", nil
		}
		pair, err := s.api.RefreshToken(ctx, token)
		if err != nil {
			s.log.Debug("token refresh failed", zap.Error(err))
			s.Clear(ctx)
			return "", nil
		}
		if err := s.setTokens(pair); err != nil {
			s.log.Warn("failed to persist refreshed token", zap.Error(err))
			s.Clear(ctx)
			return "", nil
		}
		return pair.AccessToken, nil
	})
	return v.(string)
}

// Clear implements client.TokenSource. Drops in-memory tokens and the
// persisted refresh token; storage failures are logged, never surfaced.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()
	if err := s.ks.DeleteRefreshToken(); err != nil {
		s.log.Warn("failed to delete persisted refresh token", zap.Error(err))
	}
}

// LoadPersisted pulls the stored refresh token into memory and returns it.
// Used by session bootstrap before the exchange.
func (s *Store) LoadPersisted(ctx context.Context) (string, error) {
	token, err := s.ks.LoadRefreshToken()
	if err != nil {
		return "", err
	}
	if token != "" {
		s.mu.Lock()
		s.refresh = token
		s.mu.Unlock()
	}
	return token, nil
}

// Login authenticates with credentials and installs the session.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	pair, err := s.api.Login(ctx, client.LoginParams{
		Email:    email,
		Password: password,
		DeviceID: s.deviceID(),
	})
	if err != nil {
		return err
	}
	return s.setTokens(pair)
}

// SignupParams carries the user-facing signup fields; the device id is
// attached by the store.
type SignupParams struct {
	Email      string
	Password   string
	Name       string
	Phone      string
	NationalID string
}

// Signup registers an account and installs the session.
func (s *Store) Signup(ctx context.Context, p SignupParams) error {
	s.setLoading(true)
	defer s.setLoading(false)

	pair, err := s.api.Signup(ctx, client.SignupParams{
		Email:      p.Email,
		Password:   p.Password,
		Name:       p.Name,
		Phone:      p.Phone,
		NationalID: p.NationalID,
		DeviceID:   s.deviceID(),
	})
	if err != nil {
		return err
	}
	return s.setTokens(pair)
}

// Logout revokes the current refresh token remotely and always clears the
// local session. Remote failure is swallowed: local cleanup is
// unconditional.
func (s *Store) Logout(ctx context.Context) {
	if token := s.currentRefresh(); token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Debug("remote logout failed", zap.Error(err))
		}
	}
	s.Clear(ctx)
}

// LogoutAll revokes every session of the user, with the same swallowing
// policy as Logout.
func (s *Store) LogoutAll(ctx context.Context) {
	if err := s.api.LogoutAll(ctx); err != nil {
		s.log.Debug("remote logout-all failed", zap.Error(err))
	}
	s.Clear(ctx)
}

// deviceID is best-effort; login and signup work without one.
func (s *Store) deviceID() string {
	id, err := s.ks.DeviceID()
	if err != nil {
		s.log.Debug("failed to resolve device id", zap.Error(err))
		return ""
	}
	return id
}
