package authflow

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const successPage = `<html>
<body style="font-family: Arial, sans-serif; padding: 40px;">
<h1 style="color: #2e7d32;">✅ Authentication Successful!</h1>
<p>Your tokens have been obtained.</p>
<p>You can close this window and return to the terminal.</p>
<details style="margin-top: 20px;">
<summary style="cursor: pointer;">Access Token (click to show)</summary>
<pre style="background: #f5f5f5; padding: 10px; margin-top: 10px; overflow-x: auto;">{{.AccessToken}}</pre>
</details>
{{if .RefreshToken}}<details style="margin-top: 10px;">
<summary style="cursor: pointer;">Refresh Token (click to show)</summary>
<pre style="background: #f5f5f5; padding: 10px; margin-top: 10px; overflow-x: auto;">{{.RefreshToken}}</pre>
</details>
{{end}}{{if .CodeVerifier}}<details style="margin-top: 10px;">
<summary style="cursor: pointer;">Code Verifier (click to show)</summary>
<pre style="background: #f5f5f5; padding: 10px; margin-top: 10px; overflow-x: auto;">{{.CodeVerifier}}</pre>
</details>
{{end}}</body>
</html>
`

var successTemplate = template.Must(template.New("success").Parse(successPage))

type successData struct {
	AccessToken  string
	RefreshToken string
	CodeVerifier string
}

// ExchangeFunc swaps an authorization code for tokens.
type ExchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

// CallbackConfig configures the one-shot redirect listener.
type CallbackConfig struct {
	Host     string
	Port     int
	State    string
	Verifier string
	Exchange ExchangeFunc
	Logger   *slog.Logger
}

// CallbackServer is a one-shot HTTP listener for the OAuth redirect.
// Only a successful exchange completes it; bad or stray requests get an
// error response and the server keeps waiting, so a port scan cannot
// abort the flow.
type CallbackServer struct {
	cfg      CallbackConfig
	logger   *slog.Logger
	server   *http.Server
	listener net.Listener
	tokenCh  chan *oauth2.Token
	errCh    chan error
	once     sync.Once
}

// NewCallbackServer builds the listener. Start must be called before
// WaitForToken.
func NewCallbackServer(cfg CallbackConfig) *CallbackServer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CallbackServer{
		cfg:     cfg,
		logger:  logger,
		tokenCh: make(chan *oauth2.Token, 1),
		errCh:   make(chan error, 1),
	}
}

// Start binds the listener and begins serving. The returned base URL
// reflects the real port when 0 was requested.
func (s *CallbackServer) Start() (string, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/", s.handleRoot)

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("starting callback server on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliverErr(fmt.Errorf("callback server: %w", err))
		}
	}()

	baseURL := "http://" + listener.Addr().String()
	s.logger.Info("OAuth callback server started", slog.String("url", baseURL))

	return baseURL, nil
}

// WaitForToken blocks until the callback delivers a token, the server
// fails, or ctx ends.
func (s *CallbackServer) WaitForToken(ctx context.Context) (*oauth2.Token, error) {
	select {
	case token := <-s.tokenCh:
		return token, nil
	case err := <-s.errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop shuts the server down, draining any in-flight response.
func (s *CallbackServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *CallbackServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "Wahoo OAuth callback server is running. Waiting for OAuth callback...")
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")

	s.logger.Info("received callback request", slog.String("remote", r.RemoteAddr))

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		desc := query.Get("error_description")
		if desc == "" {
			desc = "Unknown error"
		}

		s.logger.Error("OAuth error in callback",
			slog.String("error", errParam),
			slog.String("description", desc))
		http.Error(w, fmt.Sprintf("OAuth Error: %s - %s", errParam, desc), http.StatusBadRequest)

		return
	}

	code := query.Get("code")
	if code == "" {
		s.logger.Error("no authorization code received in callback")
		http.Error(w, "Error: No authorization code received", http.StatusBadRequest)

		return
	}

	if s.cfg.State != "" && query.Get("state") != s.cfg.State {
		s.logger.Error("state parameter mismatch in callback")
		http.Error(w, "Error: State parameter mismatch", http.StatusBadRequest)

		return
	}

	s.logger.Info("exchanging authorization code for access token")

	token, err := s.cfg.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error("token exchange failed", slog.String("error", err.Error()))
		http.Error(w, fmt.Sprintf("Error exchanging code for token: %v", err), http.StatusInternalServerError)

		return
	}

	if !s.deliverToken(token) {
		http.Error(w, "Authentication already completed", http.StatusConflict)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := successData{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		CodeVerifier: s.cfg.Verifier,
	}
	if err := successTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering success page", slog.String("error", err.Error()))
	}
}

// deliverToken hands the token to WaitForToken. Only the first delivery
// wins; later callbacks report false.
func (s *CallbackServer) deliverToken(token *oauth2.Token) bool {
	delivered := false

	s.once.Do(func() {
		s.tokenCh <- token
		delivered = true
	})

	return delivered
}

// deliverErr reports a fatal server failure through the same once as
// deliverToken.
func (s *CallbackServer) deliverErr(err error) {
	s.once.Do(func() {
		s.errCh <- err
	})
}
