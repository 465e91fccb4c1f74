// ABOUTME: Session bootstrap for process start
// ABOUTME: Silently resumes a session from the persisted refresh token

package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/papayal/wallet-cli/internal/auth"
)

// Hydrate attempts to resume a session before any protected operation
// runs. It reads the persisted refresh token, exchanges it if present,
// and clears session artifacts on any failure. The store is marked
// hydrated in every outcome, exactly once, and that flag is what gates
// protected operations.
func Hydrate(ctx context.Context, store *auth.Store, log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}
	defer store.MarkHydrated()

	token, err := store.LoadPersisted(ctx)
	if err != nil {
		log.Debug("failed to read persisted refresh token", zap.Error(err))
		return false
	}
	if token == "" {
		return false
	}
	if store.Refresh(ctx) == "" {
		log.Debug("session resume failed; local state cleared")
		return false
	}
	return true
}
