// ABOUTME: Password recovery commands for the papayal CLI
// ABOUTME: Request a reset email and apply an emailed reset token

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	forgotEmail   string
	resetToken    string
	resetPassword string
)

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runForgotPassword(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with an emailed reset token",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runResetPassword(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	forgotPasswordCmd.Flags().StringVar(&forgotEmail, "email", "", "Account email")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")
	resetPasswordCmd.Flags().StringVar(&resetPassword, "password", "", "New password")
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)
}

// runForgotPassword requests the reset email and returns exit code
func runForgotPassword(ctx context.Context, w io.Writer) int {
	if forgotEmail == "" {
		fmt.Fprintln(w, "Error: --email is required")
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := a.api.ForgotPassword(ctx, forgotEmail); err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	fmt.Fprintf(w, "If an account exists for %s, a reset email is on its way.\n", forgotEmail)
	return 0
}

// runResetPassword applies the reset token and returns exit code
func runResetPassword(ctx context.Context, w io.Writer) int {
	if resetToken == "" || resetPassword == "" {
		fmt.Fprintln(w, "Error: --token and --password are required")
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := a.api.ResetPassword(ctx, resetToken, resetPassword); err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	fmt.Fprintln(w, "Password updated. Log in with your new password.")
	return 0
}
