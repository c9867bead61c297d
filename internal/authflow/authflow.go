// Package authflow implements the browser-based OAuth2 authorization
// code flow with PKCE against the Wahoo Cloud. It runs a one-shot
// localhost callback server, exchanges the returned code, and persists
// the resulting tokens for the API client to pick up.
package authflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
	"github.com/askaldwell/wahoo-mcp/internal/tokenstore"
)

const (
	// DefaultAuthURL and DefaultTokenURL point at the production Wahoo
	// Cloud OAuth endpoints.
	DefaultAuthURL  = "https://api.wahooligan.com/oauth/authorize"
	DefaultTokenURL = "https://api.wahooligan.com/oauth/token"

	// DefaultTimeout bounds how long Run waits for the browser callback.
	DefaultTimeout = 5 * time.Minute

	shutdownTimeout = 5 * time.Second
)

// DefaultScopes requests every read scope the tools use.
var DefaultScopes = []string{"user_read", "workouts_read", "routes_read", "plans_read", "power_zones_read"}

// Config carries the knobs for the authorization flow. Zero values fall
// back to the defaults above and a localhost:8080 callback listener.
type Config struct {
	// ClientID identifies the OAuth application. Required.
	ClientID string

	// ClientSecret authenticates confidential clients on exchange.
	// Public clients leave it empty; PKCE carries the proof instead.
	ClientSecret string

	// AuthURL and TokenURL override the production endpoints.
	AuthURL  string
	TokenURL string

	// Host and Port are where the callback listener binds.
	Host string
	Port int

	// RedirectHost, RedirectPort and RedirectScheme shape the redirect
	// URI advertised to Wahoo. They default to the listener's host and
	// port with plain http, and exist separately so a reverse proxy can
	// front the listener.
	RedirectHost   string
	RedirectPort   int
	RedirectScheme string

	Scopes []string

	// Timeout bounds the wait for the callback. Defaults to 5 minutes.
	Timeout time.Duration

	// Store receives the obtained tokens. Required.
	Store *tokenstore.Store

	Logger *slog.Logger

	// Output is where user-facing progress lines go. Defaults to stdout.
	Output io.Writer

	// BrowserOpen overrides how the authorization URL is opened.
	// Defaults to OpenBrowser.
	BrowserOpen func(url string) error
}

// redirectURI builds the advertised redirect URI, dropping the port
// when it is the scheme's default.
func (c Config) redirectURI() string {
	switch {
	case c.RedirectScheme == "https" && c.RedirectPort == 443:
		return fmt.Sprintf("https://%s/callback", c.RedirectHost)
	case c.RedirectScheme == "http" && c.RedirectPort == 80:
		return fmt.Sprintf("http://%s/callback", c.RedirectHost)
	default:
		return fmt.Sprintf("%s://%s:%d/callback", c.RedirectScheme, c.RedirectHost, c.RedirectPort)
	}
}

// Result reports what a completed flow produced.
type Result struct {
	// Record is the persisted token record, verifier included.
	Record *tokenstore.Record

	// Scope is the scope string granted by the server, when reported.
	Scope string

	// RedirectURI is the redirect URI the flow advertised.
	RedirectURI string
}

// Flow runs the authorization code flow end to end.
type Flow struct {
	cfg Config
}

// NewFlow validates the config and fills in defaults.
func NewFlow(cfg Config) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.ErrNoClientID
	}

	if cfg.Store == nil {
		return nil, errors.New("token store is required")
	}

	if cfg.Host == "" {
		cfg.Host = "localhost"
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if cfg.RedirectHost == "" {
		cfg.RedirectHost = cfg.Host
	}

	if cfg.RedirectPort == 0 {
		cfg.RedirectPort = cfg.Port
	}

	if cfg.RedirectScheme == "" {
		cfg.RedirectScheme = "http"
	}

	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}

	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	if cfg.BrowserOpen == nil {
		cfg.BrowserOpen = OpenBrowser
	}

	return &Flow{cfg: cfg}, nil
}

// Run starts the callback server, opens the browser at the
// authorization URL, waits for the redirect, and persists the exchanged
// tokens together with the PKCE verifier so public clients can refresh
// later. It returns when the flow completes, the timeout passes, or ctx
// is canceled.
func (f *Flow) Run(ctx context.Context) (*Result, error) {
	logger := f.cfg.Logger

	verifier := oauth2.GenerateVerifier()

	state, err := generateState()
	if err != nil {
		return nil, err
	}

	redirectURI := f.cfg.redirectURI()
	logger.Info("auth flow configuration",
		slog.String("binding", fmt.Sprintf("%s:%d", f.cfg.Host, f.cfg.Port)),
		slog.String("redirect_uri", redirectURI))

	oauthCfg := &oauth2.Config{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       f.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.cfg.AuthURL,
			TokenURL:  f.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	server := NewCallbackServer(CallbackConfig{
		Host:     f.cfg.Host,
		Port:     f.cfg.Port,
		State:    state,
		Verifier: verifier,
		Logger:   logger,
		Exchange: func(ctx context.Context, code string) (*oauth2.Token, error) {
			return oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		},
	})

	if _, err := server.Start(); err != nil {
		return nil, err
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Stop(stopCtx); err != nil {
			logger.Warn("callback server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(f.cfg.Output, "\n📌 Opening browser for authentication...")
	fmt.Fprintln(f.cfg.Output, "If browser doesn't open automatically, visit this URL:")
	fmt.Fprintf(f.cfg.Output, "\n%s\n\n", authURL)

	if err := f.cfg.BrowserOpen(authURL); err != nil {
		logger.Warn("failed to open browser automatically", slog.String("error", err.Error()))
	}

	fmt.Fprintln(f.cfg.Output, "⏳ Waiting for authentication callback...")

	waitCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	token, err := server.WaitForToken(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no callback received within %s", apperrors.ErrAuthenticationFailed, f.cfg.Timeout)
		}

		return nil, err
	}

	record := &tokenstore.Record{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		CodeVerifier: verifier,
		TokenType:    token.Type(),
	}
	if !token.Expiry.IsZero() {
		record.ExpiresAt = float64(token.Expiry.Unix())
	}

	f.cfg.Store.Save(record)

	scope, _ := token.Extra("scope").(string)
	if scope != "" {
		logger.Info("token scope granted", slog.String("scope", scope))
	}

	return &Result{Record: record, Scope: scope, RedirectURI: redirectURI}, nil
}

// generateState returns a random URL-safe state parameter.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
