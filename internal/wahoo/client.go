// Package wahoo talks to the Wahoo Cloud API. The client owns the OAuth
// token lifecycle: it refreshes proactively when the stored token looks
// expired, retries exactly once after a 401, and persists rotated
// credentials through the token store.
package wahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
	"github.com/askaldwell/wahoo-mcp/internal/tokenstore"
)

// DefaultBaseURL is the production Wahoo Cloud API endpoint.
const DefaultBaseURL = "https://api.wahooligan.com"

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// defaultTimeout bounds every API request when the config does not
	// override it.
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads to prevent a misbehaving
	// server from consuming unbounded memory.
	maxResponseBytes = 1024 * 1024
)

// Config carries the knobs for the API client. Zero values fall back to
// production defaults.
type Config struct {
	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// TokenURL is the OAuth token endpoint used for refresh grants.
	// Defaults to BaseURL + "/oauth/token".
	TokenURL string

	// ClientID identifies the OAuth application. Refresh grants fail
	// without it.
	ClientID string

	// ClientSecret authenticates confidential clients on refresh. Public
	// clients leave it empty and rely on the stored PKCE verifier.
	ClientSecret string

	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration

	// HTTPClient overrides the default client, including its timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is a Wahoo Cloud API client bound to one token store.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	store        *tokenstore.Store
	logger       *slog.Logger
	refreshGroup singleflight.Group
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the bearer token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient builds a client for the given token store. It fails before
// any HTTP machinery is set up when the store cannot produce a usable
// record; a server process without credentials should not start.
func NewClient(store *tokenstore.Store, cfg Config) (*Client, error) {
	if store == nil {
		return nil, errors.New("token store is required")
	}

	if store.Current() == nil {
		return nil, fmt.Errorf("%w in %s", apperrors.ErrNoToken, store.Path())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/token"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{
			Timeout:       timeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		store:        store,
		logger:       logger,
	}, nil
}

// Store exposes the underlying token store.
func (c *Client) Store() *tokenstore.Store { return c.store }

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	// Ensure valid UTF-8 and replace control characters.
	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// ensureValidToken returns the access token to send, refreshing first
// when the stored record looks expired. A failed refresh is logged and
// the stale token is sent anyway: the 401 handling in do is the final
// authority on whether the token still works.
func (c *Client) ensureValidToken(ctx context.Context) string {
	rec := c.store.Current()
	if rec == nil {
		return ""
	}

	if rec.IsExpired() {
		c.logger.Info("access token expired, attempting to refresh")

		if !c.refreshToken(ctx) {
			c.logger.Warn("token refresh failed, proceeding with existing token")
		}

		if cur := c.store.Current(); cur != nil {
			rec = cur
		}
	}

	return rec.AccessToken
}

// refreshToken runs one refresh grant and reports success. Concurrent
// callers share a single request; re-running a refresh in parallel
// would burn the rotated refresh token.
func (c *Client) refreshToken(ctx context.Context) bool {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.doRefresh(ctx)
	})

	if err != nil {
		c.logger.Error("token refresh failed", slog.String("error", err.Error()))

		return false
	}

	return true
}

func (c *Client) doRefresh(ctx context.Context) error {
	rec := c.store.Current()
	if rec == nil || rec.RefreshToken == "" {
		return apperrors.ErrNoRefreshToken
	}

	if c.clientID == "" {
		return apperrors.ErrNoClientID
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {rec.RefreshToken},
	}

	// Confidential clients authenticate with their secret; public
	// clients supply the PKCE verifier from the original grant instead.
	switch {
	case c.clientSecret != "":
		form.Set("client_secret", c.clientSecret)
	case rec.CodeVerifier != "":
		form.Set("code_verifier", rec.CodeVerifier)
	default:
		c.logger.Warn("no client secret or code verifier available for token refresh")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating refresh request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s",
			apperrors.ErrRefreshRejected, resp.StatusCode, sanitizeResponseBody(body))
	}

	var tokenResp tokenstore.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return fmt.Errorf("%w: response missing access_token", apperrors.ErrRefreshRejected)
	}

	c.store.UpdateFromResponse(tokenResp)
	c.logger.Info("refreshed access token")

	return nil
}

// send performs one authenticated request and returns the response with
// its body already read and closed.
func (c *Client) send(ctx context.Context, method, path string, query, form url.Values) (*http.Response, []byte, error) {
	token := c.ensureValidToken(ctx)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sending %s %s: %w", apperrors.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	// Cap response reads at 1MB. API responses are small JSON payloads.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response from %s: %w", path, err)
	}

	return resp, body, nil
}

// do runs an authenticated request with the 401-repair cycle: on a 401
// it refreshes the token and retries exactly once. If the refresh fails
// the original 401 surfaces as an AuthError; any other non-2xx status
// becomes a StatusError.
func (c *Client) do(ctx context.Context, method, path string, query, form url.Values) ([]byte, error) {
	resp, body, err := c.send(ctx, method, path, query, form)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info("got 401 unauthorized, attempting token refresh")

		if !c.refreshToken(ctx) {
			return nil, &AuthError{StatusCode: resp.StatusCode, Body: sanitizeResponseBody(body)}
		}

		resp, body, err = c.send(ctx, method, path, query, form)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: sanitizeResponseBody(body)}
	}

	return body, nil
}

// decodeList unwraps a listing response and decodes its items. The API
// returns either a bare array or an object keyed by the collection
// name; items that fail to decode are logged and skipped so one bad
// record cannot hide the rest.
func decodeList[T any](logger *slog.Logger, body []byte, key, kind string) []T {
	root := gjson.ParseBytes(body)

	items := root
	if !root.IsArray() {
		items = root.Get(key)
	}

	arr := items.Array()
	out := make([]T, 0, len(arr))

	for _, item := range arr {
		var v T
		if err := json.Unmarshal([]byte(item.Raw), &v); err != nil {
			logger.Warn("failed to parse "+kind,
				slog.Int64("id", item.Get("id").Int()), slog.String("error", err.Error()))

			continue
		}

		out = append(out, v)
	}

	return out
}

// ListWorkoutsParams pages and filters the workout listing. Zero values
// mean the first page of 30 with no date filter.
type ListWorkoutsParams struct {
	Page          int
	PerPage       int
	CreatedAfter  string
	CreatedBefore string
}

// ListWorkouts returns the user's workouts.
func (c *Client) ListWorkouts(ctx context.Context, params ListWorkoutsParams) ([]Workout, error) {
	if params.Page <= 0 {
		params.Page = 1
	}

	if params.PerPage <= 0 {
		params.PerPage = 30
	}

	query := url.Values{
		"page":     {strconv.Itoa(params.Page)},
		"per_page": {strconv.Itoa(params.PerPage)},
	}

	if params.CreatedAfter != "" {
		query.Set("created_after", params.CreatedAfter)
	}

	if params.CreatedBefore != "" {
		query.Set("created_before", params.CreatedBefore)
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/workouts", query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[Workout](c.logger, body, "workouts", "workout"), nil
}

// GetWorkout returns one workout by ID.
func (c *Client) GetWorkout(ctx context.Context, id int) (*Workout, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/workouts/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var w Workout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decoding workout %d: %w", id, err)
	}

	return &w, nil
}

// ListRoutes returns the user's saved routes, optionally filtered by
// external ID.
func (c *Client) ListRoutes(ctx context.Context, externalID string) ([]Route, error) {
	var query url.Values
	if externalID != "" {
		query = url.Values{"external_id": {externalID}}
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/routes", query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[Route](c.logger, body, "routes", "route"), nil
}

// GetRoute returns one route by ID.
func (c *Client) GetRoute(ctx context.Context, id int) (*Route, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/routes/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var r Route
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decoding route %d: %w", id, err)
	}

	return &r, nil
}

// ListPlans returns the user's training plans, optionally filtered by
// external ID.
func (c *Client) ListPlans(ctx context.Context, externalID string) ([]Plan, error) {
	var query url.Values
	if externalID != "" {
		query = url.Values{"external_id": {externalID}}
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/plans", query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[Plan](c.logger, body, "plans", "plan"), nil
}

// GetPlan returns one plan by ID.
func (c *Client) GetPlan(ctx context.Context, id int) (*Plan, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/plans/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var p Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding plan %d: %w", id, err)
	}

	return &p, nil
}

// CreatePlanRequest carries everything the plans endpoint needs to
// register a new plan file.
type CreatePlanRequest struct {
	Plan              *WorkoutPlan
	Filename          string
	ExternalID        string
	ProviderUpdatedAt string
}

// CreatePlan uploads a new plan to the user's library. The plan file
// travels base64-encoded inside a form field rather than as a multipart
// upload; that is what the endpoint expects.
func (c *Client) CreatePlan(ctx context.Context, req CreatePlanRequest) (*CreatePlanResponse, error) {
	dataURL, err := req.Plan.EncodeDataURL()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"plan[file]":                {dataURL},
		"plan[external_id]":         {req.ExternalID},
		"plan[provider_updated_at]": {req.ProviderUpdatedAt},
	}

	if req.Filename != "" {
		form.Set("plan[filename]", req.Filename)
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/plans", nil, form)
	if err != nil {
		return nil, err
	}

	var created CreatePlanResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("invalid plan data received from API: %w", err)
	}

	return &created, nil
}

// ListPowerZones returns the user's power zones.
func (c *Client) ListPowerZones(ctx context.Context) ([]PowerZone, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/power_zones", nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[PowerZone](c.logger, body, "power_zones", "power zone"), nil
}

// GetPowerZone returns one power zone by ID.
func (c *Client) GetPowerZone(ctx context.Context, id int) (*PowerZone, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/power_zones/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var z PowerZone
	if err := json.Unmarshal(body, &z); err != nil {
		return nil, fmt.Errorf("decoding power zone %d: %w", id, err)
	}

	return &z, nil
}
