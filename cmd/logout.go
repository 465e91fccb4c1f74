// ABOUTME: Logout command for the papayal CLI
// ABOUTME: Revokes the session remotely and always clears local state

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papayal/wallet-cli/internal/session"
)

var logoutAll bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of your wallet",
	Long:  `Revoke this machine's session. Local credentials are removed even when the backend cannot be reached. With --all, every session of your account is revoked.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Revoke every session of this account")
	rootCmd.AddCommand(logoutCmd)
}

// runLogout executes the logout flow and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	// Resume the session so the revocation carries valid credentials; a
	// failed resume still ends with local cleanup below.
	session.Hydrate(ctx, a.store, a.log)

	if logoutAll {
		a.store.LogoutAll(ctx)
	} else {
		a.store.Logout(ctx)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]any{"status": "logged_out", "all": logoutAll}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, "Logged out.")
	}
	return 0
}
