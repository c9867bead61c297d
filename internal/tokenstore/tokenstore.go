// Package tokenstore persists Wahoo OAuth credentials to a single JSON
// file with restrictive permissions and keeps a per-store in-memory
// cache. The file is the durable source of truth; the cache is populated
// lazily on first access and rewritten on every save.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultExpiryBuffer is subtracted from the expiry timestamp when
	// deciding whether a token needs a proactive refresh, so refresh
	// happens before hard expiry rather than racing it mid-request.
	DefaultExpiryBuffer = 5 * time.Minute

	tokenFilePerm = os.FileMode(0o600)
	tokenDirPerm  = os.FileMode(0o700)
)

// Record is one OAuth credential set as persisted to disk. Optional
// fields are omitted from the JSON form when absent. ExpiresAt is an
// absolute Unix timestamp in seconds; zero means the server reported no
// expiry and the token is treated as valid indefinitely.
type Record struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	CodeVerifier string  `json:"code_verifier,omitempty"`
	ExpiresAt    float64 `json:"expires_at,omitempty"`
	TokenType    string  `json:"token_type,omitempty"`
}

// TokenResponse is the JSON body returned by the OAuth token endpoint
// for both authorization-code exchange and refresh grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// IsExpired reports whether the token is within DefaultExpiryBuffer of
// its expiry time.
func (r *Record) IsExpired() bool {
	return r.IsExpiredWithMargin(DefaultExpiryBuffer)
}

// IsExpiredWithMargin reports whether the token expires within the given
// margin. Records without expiry information never report expired; the
// API is the final authority on token validity.
func (r *Record) IsExpiredWithMargin(margin time.Duration) bool {
	if r.ExpiresAt == 0 {
		return false
	}

	return unixNow() >= r.ExpiresAt-margin.Seconds()
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Store owns exactly one token file and at most one cached Record.
// All methods are safe for concurrent use.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached *Record
}

// NewStore creates a store backed by the given file path. The path is
// required; the file itself does not need to exist yet.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("token file path is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{path: path, logger: logger}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the token file and caches the result. A missing file or
// undecodable contents yield a nil record, not an error: the caller is
// expected to fall back to interactive authentication.
func (s *Store) Load() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *Store) loadLocked() *Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("token file not found", slog.String("path", s.path))
		} else {
			s.logger.Error("failed to read token file",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}

		return nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Error("failed to parse token file",
			slog.String("path", s.path), slog.String("error", err.Error()))

		return nil
	}

	if rec.AccessToken == "" {
		s.logger.Error("token file has no access_token", slog.String("path", s.path))

		return nil
	}

	if rec.TokenType == "" {
		rec.TokenType = "Bearer"
	}

	s.cached = &rec
	s.logger.Info("loaded tokens from file", slog.String("path", s.path))

	return s.cached
}

// Save replaces the cached record and writes it to disk with 0600
// permissions, creating parent directories as needed. Write failures are
// logged, not returned: the cache still holds the new record, and losing
// a persisted token is recoverable through re-authentication.
func (s *Store) Save(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = rec
	s.writeLocked(rec)
}

func (s *Store) writeLocked(rec *Record) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, tokenDirPerm); err != nil {
		s.logger.Error("failed to create token directory",
			slog.String("dir", dir), slog.String("error", err.Error()))

		return
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.logger.Error("failed to serialize tokens", slog.String("error", err.Error()))

		return
	}

	// Write via a temp file in the same directory and rename into place,
	// so a crash mid-write cannot leave a truncated token file.
	tmp, err := os.CreateTemp(dir, ".wahoo-tokens-*")
	if err != nil {
		s.logger.Error("failed to create temp token file",
			slog.String("dir", dir), slog.String("error", err.Error()))

		return
	}

	tmpName := tmp.Name()

	_, werr := tmp.Write(data)

	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)

		if werr == nil {
			werr = cerr
		}

		s.logger.Error("failed to write token file",
			slog.String("path", s.path), slog.String("error", werr.Error()))

		return
	}

	if err := os.Chmod(tmpName, tokenFilePerm); err != nil {
		s.logger.Warn("failed to set token file permissions",
			slog.String("path", s.path), slog.String("error", err.Error()))
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.logger.Error("failed to write token file",
			slog.String("path", s.path), slog.String("error", err.Error()))

		return
	}

	s.logger.Info("saved tokens to file", slog.String("path", s.path))
}

// UpdateFromResponse builds the successor record for a token endpoint
// response, saves it, and returns it. The new record inherits
// refresh_token from the cached record when the response omits it
// (server-supplied values always win), and always carries the cached
// code_verifier forward: the token endpoint never returns one, and
// public-client refreshes need it.
func (s *Store) UpdateFromResponse(resp TokenResponse) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Record{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}

	if rec.TokenType == "" {
		rec.TokenType = "Bearer"
	}

	if resp.ExpiresIn > 0 {
		rec.ExpiresAt = unixNow() + float64(resp.ExpiresIn)
	}

	if prev := s.cached; prev != nil {
		if rec.RefreshToken == "" {
			rec.RefreshToken = prev.RefreshToken
		}

		rec.CodeVerifier = prev.CodeVerifier
	}

	s.cached = rec
	s.writeLocked(rec)

	return rec
}

// Current returns the cached record, loading it from disk on first use.
func (s *Store) Current() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return s.loadLocked()
	}

	return s.cached
}

// Clear drops the cached record and deletes the backing file if present.
// Deletion failures are logged, not returned.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil

	err := os.Remove(s.path)

	switch {
	case err == nil:
		s.logger.Info("deleted token file", slog.String("path", s.path))
	case os.IsNotExist(err):
	default:
		s.logger.Error("failed to delete token file",
			slog.String("path", s.path), slog.String("error", err.Error()))
	}
}
