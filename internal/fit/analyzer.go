package fit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
)

const (
	// defaultDownloadTimeout bounds the whole FIT file download.
	defaultDownloadTimeout = 30 * time.Second

	// maxFITBytes caps how much of a FIT file is read. Multi-hour rides
	// stay in the single-digit megabytes.
	maxFITBytes = 32 * 1024 * 1024
)

// AnalyzerConfig configures an Analyzer. All fields are optional:
// Cache disables caching when nil, and HTTPClient defaults to one with
// Timeout applied (or defaultDownloadTimeout when unset).
type AnalyzerConfig struct {
	HTTPClient *http.Client
	Cache      *Cache
	Logger     *slog.Logger
	Timeout    time.Duration
}

// Analyzer downloads FIT files and turns them into analyses.
type Analyzer struct {
	httpClient *http.Client
	cache      *Cache
	logger     *slog.Logger
}

// NewAnalyzer builds an Analyzer from the config.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultDownloadTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Analyzer{httpClient: httpClient, cache: cfg.Cache, logger: logger}
}

// Analyze returns summary statistics for the FIT file at fitURL,
// served from the cache when a prior analysis of the same URL exists.
func (a *Analyzer) Analyze(ctx context.Context, fitURL string) (*Analysis, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(fitURL); ok {
			a.logger.Debug("FIT analysis cache hit", slog.String("url", fitURL))
			return cached, nil
		}
	}

	analysis, _, err := a.AnalyzeFull(ctx, fitURL)

	return analysis, err
}

// AnalyzeFull always downloads and parses the file, returning the
// records alongside the analysis so maps and charts can be rendered.
// A configured cache is refreshed with the new analysis.
func (a *Analyzer) AnalyzeFull(ctx context.Context, fitURL string) (*Analysis, []Record, error) {
	body, err := a.download(ctx, fitURL)
	if err != nil {
		return nil, nil, err
	}

	records, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}

	analysis := NewAnalysis(records)

	if a.cache != nil {
		if err := a.cache.Put(fitURL, analysis); err != nil {
			a.logger.Warn("failed to cache FIT analysis",
				slog.String("url", fitURL),
				slog.String("error", err.Error()))
		}
	}

	a.logger.Info("analyzed FIT file",
		slog.String("url", fitURL),
		slog.Int("gps_points", analysis.GPSPointsCount))

	return analysis, records, nil
}

func (a *Analyzer) download(ctx context.Context, fitURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fitURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading FIT file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: FIT download returned status %d", apperrors.ErrAPIResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFITBytes))
	if err != nil {
		return nil, fmt.Errorf("reading FIT file: %w", err)
	}

	return body, nil
}
