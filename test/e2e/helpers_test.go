package e2e_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/askaldwell/wahoo-mcp/internal/fit"
	"github.com/askaldwell/wahoo-mcp/internal/mcpserver"
	"github.com/askaldwell/wahoo-mcp/internal/server"
	"github.com/askaldwell/wahoo-mcp/internal/tokenstore"
	"github.com/askaldwell/wahoo-mcp/internal/wahoo"
)

const (
	seedAccessToken  = "e2e-seed-access"
	seedRefreshToken = "e2e-seed-refresh"
	rotatedAccess    = "e2e-rotated-access"
	rotatedRefresh   = "e2e-rotated-refresh"
	e2eClientID      = "e2e-client"
	e2eClientSecret  = "e2e-client-secret"
	e2eAuthCode      = "e2e-auth-code"
)

// fakeCloud is an in-memory stand-in for the Wahoo Cloud: the OAuth
// token endpoint plus the v1 resources the tools read. It accepts
// exactly one bearer token at a time and rotates it on refresh, which
// lets tests drive the client through the expiry and 401-repair paths.
type fakeCloud struct {
	mu           sync.Mutex
	validToken   string
	refreshToken string
	refreshes    int
	planForm     url.Values
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		validToken:   seedAccessToken,
		refreshToken: seedRefreshToken,
	}
}

func (fc *fakeCloud) refreshCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	return fc.refreshes
}

// revokeAccess invalidates the currently accepted bearer token without
// telling the client, forcing the next API call into a 401.
func (fc *fakeCloud) revokeAccess() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.validToken = "revoked-" + fc.validToken
}

func (fc *fakeCloud) lastPlanForm() url.Values {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	return fc.planForm
}

func (fc *fakeCloud) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", fc.handleToken)
	mux.HandleFunc("/v1/workouts", fc.authorized(fc.handleWorkoutList))
	mux.HandleFunc("/v1/workouts/", fc.authorized(fc.handleWorkout))
	mux.HandleFunc("/v1/routes", fc.authorized(fc.handleRouteList))
	mux.HandleFunc("/v1/plans", fc.authorized(fc.handlePlans))
	mux.HandleFunc("/v1/power_zones", fc.authorized(fc.handlePowerZoneList))

	return mux
}

func (fc *fakeCloud) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fc.mu.Lock()
		want := "Bearer " + fc.validToken
		fc.mu.Unlock()

		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_token"}`)

			return
		}

		next(w, r)
	}
}

// handleToken serves both grants the stack uses: authorization_code
// during bootstrap and refresh_token during serving. A successful
// refresh rotates both tokens, as the real endpoint does.
func (fc *fakeCloud) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		if r.PostForm.Get("code") != e2eAuthCode {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)

			return
		}

		fc.validToken = seedAccessToken
		fc.refreshToken = seedRefreshToken

		writeTokenResponse(w, seedAccessToken, seedRefreshToken)

	case "refresh_token":
		if r.PostForm.Get("refresh_token") != fc.refreshToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)

			return
		}

		fc.validToken = rotatedAccess
		fc.refreshToken = rotatedRefresh
		fc.refreshes++

		writeTokenResponse(w, rotatedAccess, rotatedRefresh)

	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"unsupported_grant_type"}`)
	}
}

func writeTokenResponse(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    7200,
		"token_type":    "Bearer",
		"scope":         "user_read workouts_read routes_read plans_read power_zones_read",
	})
}

func (fc *fakeCloud) handleWorkoutList(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"workouts":[
		{"id":101,"name":"Sunrise Intervals","minutes":60,"workout_type_id":0,
		 "starts":"2024-06-01T06:30:00.000Z","workout_token":"tok-101",
		 "created_at":"2024-06-01T08:00:00.000Z","updated_at":"2024-06-01T08:00:00.000Z"},
		{"id":102,"name":"Recovery Spin","minutes":30,"workout_type_id":61,
		 "starts":"2024-06-02T06:30:00.000Z","workout_token":"tok-102",
		 "created_at":"2024-06-02T08:00:00.000Z","updated_at":"2024-06-02T08:00:00.000Z"}
	]}`)
}

func (fc *fakeCloud) handleWorkout(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/v1/workouts/101":
		fmt.Fprint(w, `{"id":101,"name":"Sunrise Intervals","minutes":60,"workout_type_id":0,
			"starts":"2024-06-01T06:30:00.000Z","workout_token":"tok-101",
			"created_at":"2024-06-01T08:00:00.000Z","updated_at":"2024-06-01T08:00:00.000Z"}`)
	case "/v1/workouts/102":
		fmt.Fprint(w, `{"id":102,"name":"Recovery Spin","minutes":30,"workout_type_id":61,
			"starts":"2024-06-02T06:30:00.000Z","workout_token":"tok-102",
			"created_at":"2024-06-02T08:00:00.000Z","updated_at":"2024-06-02T08:00:00.000Z"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	}
}

func (fc *fakeCloud) handleRouteList(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"routes":[
		{"id":7,"user_id":1,"name":"River Loop","distance":24500.5,"external_id":"rl-1",
		 "file":{"url":"https://cdn.example.com/r7.fit"}}
	]}`)
}

func (fc *fakeCloud) handlePlans(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		fc.mu.Lock()
		fc.planForm = r.PostForm
		fc.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":55,"user_id":1,"name":"E2E Plan","external_id":"e2e-plan-1",
			"provider_updated_at":"2024-06-01T00:00:00.000Z",
			"file":{"url":"https://cdn.example.com/plans/55.json"},
			"created_at":"2024-06-03T00:00:00.000Z","updated_at":"2024-06-03T00:00:00.000Z"}`)

		return
	}

	fmt.Fprint(w, `{"plans":[]}`)
}

func (fc *fakeCloud) handlePowerZoneList(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"power_zones":[
		{"id":9,"user_id":1,"ftp":250,"zone_count":7,"workout_type_id":0,
		 "zone_1":137,"zone_2":187,"zone_3":225,"zone_4":262,"zone_5":300,"zone_6":375,"zone_7":1000}
	]}`)
}

// harness holds the full e2e stack: the fake cloud, a real token store
// and API client, and an MCP server reachable over streamable HTTP.
type harness struct {
	Cloud    *fakeCloud
	CloudURL string
	Store    *tokenstore.Store
	MCPURL   string

	httpClient *http.Client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// seedRecord builds a token record the fake cloud will accept.
// expiresIn shifts the recorded expiry relative to now; negative values
// make the record look expired.
func seedRecord(expiresIn time.Duration) *tokenstore.Record {
	return &tokenstore.Record{
		AccessToken:  seedAccessToken,
		RefreshToken: seedRefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    float64(time.Now().Add(expiresIn).Unix()),
	}
}

// newHarness wires the full stack around the given seed record: fake
// cloud, token store, wahoo client, FIT analyzer, MCP server, and the
// streamable HTTP mux from the server package.
func newHarness(t *testing.T, rec *tokenstore.Record) *harness {
	t.Helper()

	cloud := newFakeCloud()
	cloudTS := httptest.NewServer(cloud.handler())
	t.Cleanup(cloudTS.Close)

	logger := discardLogger()

	store, err := tokenstore.NewStore(filepath.Join(t.TempDir(), "tokens.json"), logger)
	require.NoError(t, err)
	store.Save(rec)

	client, err := wahoo.NewClient(store, wahoo.Config{
		BaseURL:      cloudTS.URL,
		TokenURL:     cloudTS.URL + "/oauth/token",
		ClientID:     e2eClientID,
		ClientSecret: e2eClientSecret,
		Logger:       logger,
	})
	require.NoError(t, err)

	analyzer := fit.NewAnalyzer(fit.AnalyzerConfig{Logger: logger})

	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "wahoo-mcp-e2e", Version: "test"},
		nil,
	)
	mcpserver.RegisterTools(mcpServer, client, analyzer)

	mcpTS := httptest.NewServer(server.NewMux(mcpServer))
	t.Cleanup(mcpTS.Close)

	return &harness{
		Cloud:      cloud,
		CloudURL:   cloudTS.URL,
		Store:      store,
		MCPURL:     mcpTS.URL,
		httpClient: mcpTS.Client(),
	}
}

// mcpSession connects an MCP client session over the streamable HTTP
// transport.
func (h *harness) mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	transport := &mcp.StreamableClientTransport{
		Endpoint:             h.MCPURL + "/mcp",
		HTTPClient:           h.httpClient,
		DisableStandaloneSSE: true,
	}

	client := mcp.NewClient(
		&mcp.Implementation{Name: "e2e-test-client", Version: "test"},
		nil,
	)

	session, err := client.Connect(t.Context(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

// callTool invokes a tool over the session and returns the result.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	result, err := session.CallTool(t.Context(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)

	return result
}

// freePort grabs an ephemeral loopback port for the callback server.
func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	return port
}
