// ABOUTME: Profile commands for the papayal CLI
// ABOUTME: Show and update the authenticated profile, including the avatar

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papayal/wallet-cli/internal/client"
)

var (
	meName  string
	mePhone string
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMe(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var meUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMeUpdate(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var meAvatarCmd = &cobra.Command{
	Use:   "avatar <file>",
	Short: "Upload a profile image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMeAvatar(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	meUpdateCmd.Flags().StringVar(&meName, "name", "", "New display name")
	meUpdateCmd.Flags().StringVar(&mePhone, "phone", "", "New phone number")
	meCmd.AddCommand(meUpdateCmd)
	meCmd.AddCommand(meAvatarCmd)
	rootCmd.AddCommand(meCmd)
}

// runMe fetches and prints the profile, returns exit code
func runMe(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	user, err := a.api.Me(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	printUser(w, user)
	return 0
}

// runMeUpdate patches the profile, returns exit code
func runMeUpdate(ctx context.Context, w io.Writer) int {
	if meName == "" && mePhone == "" {
		fmt.Fprintln(w, "Error: provide --name and/or --phone")
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	var params client.UpdateMeParams
	if meName != "" {
		params.Name = &meName
	}
	if mePhone != "" {
		params.Phone = &mePhone
	}

	user, err := a.api.UpdateMe(ctx, params)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	printUser(w, user)
	return 0
}

// runMeAvatar uploads a profile image, returns exit code
func runMeAvatar(ctx context.Context, w io.Writer, path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	user, err := a.api.UploadAvatar(ctx, filepath.Base(path), content)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		printUser(w, user)
	} else {
		fmt.Fprintf(w, "Avatar updated: %s\n", user.AvatarURL)
	}
	return 0
}

func printUser(w io.Writer, user *client.User) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(user, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintln(w, formatUserHuman(user))
}

// formatUserHuman formats a profile for human readability
func formatUserHuman(user *client.User) string {
	return fmt.Sprintf(`Email: %s
Name:  %s
Phone: %s`, user.Email, user.Name, user.Phone)
}
