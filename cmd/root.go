// ABOUTME: Root command for the papayal CLI
// ABOUTME: Global flags plus per-invocation wiring of config, logger, and session

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papayal/wallet-cli/internal/auth"
	"github.com/papayal/wallet-cli/internal/client"
	"github.com/papayal/wallet-cli/internal/config"
	"github.com/papayal/wallet-cli/internal/keystore"
	"github.com/papayal/wallet-cli/internal/logging"
	"github.com/papayal/wallet-cli/internal/session"
)

var (
	apiURL     string
	configPath string
	jsonOutput bool
	verbose    bool
)

// errNotLoggedIn signals a protected command invoked without a session.
var errNotLoggedIn = errors.New("not logged in (run `papayal login`)")

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "papayal",
	Short: "CLI for the Papayal gift card wallet",
	Long: `papayal is a command-line client for the Papayal gift card wallet.

Browse your gift cards, mint in-store redemption tokens, and manage your
account. The session is resumed automatically from the locally encrypted
refresh token.

Environment Variables:
  PAPAYAL_API_BASE_URL  Backend API URL (default: http://localhost:3000)
  PAPAYAL_KEYSTORE_DIR  Directory for the encrypted credential store`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides PAPAYAL_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// app bundles the per-invocation collaborators.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *auth.Store
	api   *client.Client
}

// newApp wires config, logger, keystore, token store, and the pipeline.
// Flag values take precedence over environment and file configuration.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	level, pretty := cfg.Log.Level, cfg.Log.Pretty
	if verbose {
		level, pretty = "debug", true
	}
	log, err := logging.New(level, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	ks, err := keystore.Open(cfg.Keystore.Dir)
	if err != nil {
		return nil, err
	}

	store := auth.NewStore(ks, log)
	api := client.New(cfg.API.BaseURL,
		client.WithTokenSource(store),
		client.WithLogger(log),
		client.WithTimeout(cfg.API.Timeout),
	)
	store.Bind(api)

	return &app{cfg: cfg, log: log, store: store, api: api}, nil
}

// requireSession hydrates from storage and fails when no session could be
// established.
func (a *app) requireSession(ctx context.Context) error {
	if !session.Hydrate(ctx, a.store, a.log) {
		return errNotLoggedIn
	}
	return nil
}

// requestID formats the correlation id suffix for error output.
func requestID(err error) string {
	var httpErr *client.Error
	if errors.As(err, &httpErr) && httpErr.RequestID != "" {
		return fmt.Sprintf(" (request id %s)", httpErr.RequestID)
	}
	return ""
}
