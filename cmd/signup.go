// ABOUTME: Signup command for the papayal CLI
// ABOUTME: Registers a new account and starts a session

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

	"github.com/papayal/wallet-cli/internal/auth"
)

var (
	signupEmail      string
	signupPassword   string
	signupName       string
	signupPhone      string
	signupNationalID string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a wallet account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSignup(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Account password")
	signupCmd.Flags().StringVar(&signupName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupPhone, "phone", "", "Phone number")
	signupCmd.Flags().StringVar(&signupNationalID, "national-id", "", "National id (optional)")
	rootCmd.AddCommand(signupCmd)
}

// runSignup executes the signup flow and returns exit code
func runSignup(ctx context.Context, w io.Writer) int {
	if signupEmail == "" || signupPassword == "" || signupName == "" || signupPhone == "" {
		fmt.Fprintln(w, "Error: --email, --password, --name, and --phone are required")
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	err = a.store.Signup(ctx, auth.SignupParams{
		Email:      signupEmail,
		Password:   signupPassword,
		Name:       signupName,
		Phone:      signupPhone,
		NationalID: signupNationalID,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{"status": "signed_up", "email": signupEmail}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Welcome, %s. You are logged in.\n", signupName)
	}
	return 0
}
