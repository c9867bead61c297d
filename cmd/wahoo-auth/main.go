package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/askaldwell/wahoo-mcp/internal/authflow"
	"github.com/askaldwell/wahoo-mcp/internal/config"
	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
	"github.com/askaldwell/wahoo-mcp/internal/logging"
	"github.com/askaldwell/wahoo-mcp/internal/tokenstore"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Println("\n=== Wahoo OAuth Authentication Helper ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrTokenFileRequired) {
			fmt.Println("❌ Error: WAHOO_TOKEN_FILE environment variable is required")
			fmt.Println("Set it to the path where tokens should be stored (e.g., export WAHOO_TOKEN_FILE=token.json)")
			os.Exit(1)
		}

		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("wahoo-auth starting",
		slog.String("version", Version),
		slog.String("token_file", cfg.TokenFile),
	)

	stdin := bufio.NewScanner(os.Stdin)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID, err = promptLine(stdin, "Enter your Wahoo Client ID: ")
		if err != nil {
			return err
		}
	}

	clientSecret := cfg.ClientSecret
	if clientSecret == "" {
		clientSecret, err = promptLine(stdin, "Enter your Wahoo Client Secret: ")
		if err != nil {
			return err
		}
	}

	store, err := tokenstore.NewStore(cfg.TokenFile, logger)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}

	flow, err := authflow.NewFlow(authflow.Config{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		AuthURL:        cfg.AuthURL,
		TokenURL:       cfg.TokenURL,
		Host:           cfg.AuthHost,
		Port:           cfg.AuthPort,
		RedirectHost:   cfg.RedirectHost,
		RedirectPort:   cfg.RedirectPort,
		RedirectScheme: cfg.RedirectScheme,
		Store:          store,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = flow.Run(ctx)

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("\n\nAuthentication cancelled.")
		return nil
	case errors.Is(err, apperrors.ErrAuthenticationFailed):
		fmt.Println("\n❌ Authentication timeout. Please try again.")
		os.Exit(1)
	case err != nil:
		return err
	}

	fmt.Println("\n✅ Success! Your tokens have been obtained.")
	fmt.Printf("\n💾 Tokens have been saved to: %s\n", store.Path())
	fmt.Println("\n💡 Your tokens will be automatically refreshed when needed.")

	return nil
}

// promptLine reads one line of input after printing the label.
func promptLine(stdin *bufio.Scanner, label string) (string, error) {
	fmt.Print(label)

	if !stdin.Scan() {
		if err := stdin.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}

		return "", errors.New("no input")
	}

	return strings.TrimSpace(stdin.Text()), nil
}
