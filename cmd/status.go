// ABOUTME: Status command for the papayal CLI
// ABOUTME: Reports session state and the last request id for diagnostics

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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long:  `Report the configured backend, whether a session could be resumed, and the correlation id of the last request for support purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus reports session state and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	authenticated := session.Hydrate(ctx, a.store, a.log)

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]any{
			"backend":         a.api.BaseURL(),
			"hydrated":        a.store.Hydrated(),
			"authenticated":   authenticated,
			"last_request_id": a.api.LastRequestID(),
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatStatusHuman(a.api.BaseURL(), authenticated, a.api.LastRequestID()))
	}
	return 0
}

// formatStatusHuman formats status for human readability
func formatStatusHuman(backend string, authenticated bool, lastRequestID string) string {
	state := "logged out"
	if authenticated {
		state = "active"
	}
	if lastRequestID == "" {
		lastRequestID = "-"
	}
	return fmt.Sprintf(`Backend:         %s
Session:         %s
Last request id: %s`, backend, state, lastRequestID)
}
