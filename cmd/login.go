// ABOUTME: Login command for the papayal CLI
// ABOUTME: Exchanges credentials for a session and persists the refresh token

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
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your wallet",
	Long:  `Authenticate with email and password. The refresh token is stored encrypted on this machine; the access token lives only in memory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	rootCmd.AddCommand(loginCmd)
}

// runLogin executes the login flow and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	if loginEmail == "" || loginPassword == "" {
		fmt.Fprintln(w, "Error: --email and --password are required")
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := a.store.Login(ctx, loginEmail, loginPassword); err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{"status": "logged_in", "email": loginEmail}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", loginEmail)
	}
	return 0
}
