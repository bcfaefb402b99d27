package coverart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the Cover Art Archive root.
const DefaultBaseURL = "https://coverartarchive.org"

// DefaultConcurrency caps parallel lookups in Batch when none is configured.
const DefaultConcurrency = 8

// Resolver looks up cover images for release groups. It does not share the
// catalog's rate limiter; lookups are only bounded by the concurrency ceiling.
type Resolver struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	concurrency int
}

// Config configures a Resolver.
type Config struct {
	BaseURL     string
	UserAgent   string
	Concurrency int
	HTTPClient  *http.Client
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Resolver{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		httpClient:  cfg.HTTPClient,
		concurrency: cfg.Concurrency,
	}
}

type image struct {
	Front      bool              `json:"front"`
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails"`
}

type listing struct {
	Images []image `json:"images"`
}

// CoverArt returns the preferred image URL for a release group, or nil when
// the archive has nothing or cannot be reached.
func (r *Resolver) CoverArt(ctx context.Context, releaseGroupID string) *string {
	images, err := r.fetch(ctx, releaseGroupID)
	if err != nil {
		log.Debug().Err(err).Str("release_group_id", releaseGroupID).Msg("cover art unavailable")
		return nil
	}
	return selectImage(images)
}

// Batch resolves every id with at most the configured number of lookups in
// flight. The result has an entry for each input id.
func (r *Resolver) Batch(ctx context.Context, releaseGroupIDs []string) map[string]*string {
	results := make(map[string]*string, len(releaseGroupIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, id := range releaseGroupIDs {
		g.Go(func() error {
			cover := r.CoverArt(gctx, id)
			mu.Lock()
			results[id] = cover
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Resolver) fetch(ctx context.Context, releaseGroupID string) ([]image, error) {
	endpoint := r.baseURL + "/release-group/" + url.PathEscape(releaseGroupID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coverart api error: %s", resp.Status)
	}

	var result listing
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result.Images, nil
}

// selectImage prefers the front cover; within an image, the 500px thumbnail,
// then "large", then the full image.
func selectImage(images []image) *string {
	if len(images) == 0 {
		return nil
	}

	chosen := images[0]
	for _, img := range images {
		if img.Front {
			chosen = img
			break
		}
	}

	for _, candidate := range []string{chosen.Thumbnails["500"], chosen.Thumbnails["large"], chosen.Image} {
		if candidate != "" {
			return &candidate
		}
	}
	return nil
}
