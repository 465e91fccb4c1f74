// ABOUTME: Gift card commands for the papayal CLI
// ABOUTME: List cards, show one, and mint in-store redemption tokens

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papayal/wallet-cli/internal/client"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List your gift cards",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCards(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var cardsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a gift card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCardsShow(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var cardsRedeemCmd = &cobra.Command{
	Use:   "redeem <id>",
	Short: "Mint an in-store redemption token for a gift card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCardsRedeem(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	cardsCmd.AddCommand(cardsShowCmd)
	cardsCmd.AddCommand(cardsRedeemCmd)
	rootCmd.AddCommand(cardsCmd)
}

// runCards lists the wallet and returns exit code
func runCards(ctx context.Context, w io.Writer) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	cards, err := a.api.GiftCards(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(cards, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatCardsHuman(cards))
	}
	return 0
}

// runCardsShow prints one card and returns exit code
func runCardsShow(ctx context.Context, w io.Writer, id string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	card, err := a.api.GiftCard(ctx, id)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(card, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatCardHuman(card))
	}
	return 0
}

// runCardsRedeem mints a redemption token and returns exit code
func runCardsRedeem(ctx context.Context, w io.Writer, id string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if err := a.requireSession(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	token, err := a.api.RedemptionToken(ctx, id)
	if err != nil {
		fmt.Fprintf(w, "Error: %v%s\n", err, requestID(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(token, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Redemption token: %s\nExpires at:       %s\n", token.Token, token.ExpiresAt)
	}
	return 0
}

// formatCardsHuman renders the wallet as a table
func formatCardsHuman(cards []client.GiftCard) string {
	if len(cards) == 0 {
		return "No gift cards yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-20s %-10s %-10s %s\n", "ID", "MERCHANT", "BALANCE", "STATUS", "EXPIRES")
	for _, card := range cards {
		fmt.Fprintf(&b, "%-24s %-20s %-10s %-10s %s\n",
			card.ID, cardMerchant(card), formatCents(card.RemainingBalanceCents, card.Currency), card.Status, card.ExpiresAt)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatCardHuman renders a single card
func formatCardHuman(card *client.GiftCard) string {
	return fmt.Sprintf(`ID:       %s
Merchant: %s
Balance:  %s of %s
Status:   %s
Expires:  %s`,
		card.ID, cardMerchant(*card),
		formatCents(card.RemainingBalanceCents, card.Currency),
		formatCents(card.AmountCents, card.Currency),
		card.Status, card.ExpiresAt)
}

// cardMerchant picks the best available merchant label
func cardMerchant(card client.GiftCard) string {
	switch {
	case card.MerchantName != "":
		return card.MerchantName
	case card.StoreName != "":
		return card.StoreName
	case card.Name != "":
		return card.Name
	default:
		return "-"
	}
}

// formatCents renders a cent amount with its currency
func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
