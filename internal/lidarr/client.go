package lidarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ConfigSource reads integration settings. Implementations must not cache:
// admin edits apply to the next call.
type ConfigSource interface {
	Setting(ctx context.Context, key string) (string, error)
}

// Client talks to a Lidarr instance configured through a ConfigSource.
type Client struct {
	config     ConfigSource
	httpClient *http.Client
}

// New creates a Lidarr client.
func New(config ConfigSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{config: config, httpClient: httpClient}
}

type connection struct {
	baseURL string
	apiKey  string
}

func (c *Client) connection(ctx context.Context) (connection, error) {
	baseURL, err := c.config.Setting(ctx, KeyURL)
	if err != nil {
		return connection{}, fmt.Errorf("read %s: %w", KeyURL, err)
	}
	apiKey, err := c.config.Setting(ctx, KeyAPIKey)
	if err != nil {
		return connection{}, fmt.Errorf("read %s: %w", KeyAPIKey, err)
	}
	if baseURL == "" || apiKey == "" {
		return connection{}, ErrNotConfigured
	}
	return connection{baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey}, nil
}

// do sends one request to /api/v1{endpoint}. A nil result discards the body.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, result any) error {
	conn, err := c.connection(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, conn.baseURL+"/api/v1"+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", conn.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return upstreamError(resp.StatusCode, data)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// TestConnection probes the status endpoint. Failures are reported in the
// result, never as an error.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	var status systemStatus
	if err := c.do(ctx, http.MethodGet, "/system/status", nil, &status); err != nil {
		if IsUnauthorized(err) {
			return ConnectionResult{Success: false, Error: "Lidarr rejected the API key"}
		}
		return ConnectionResult{Success: false, Error: err.Error()}
	}
	return ConnectionResult{Success: true, Version: status.Version}
}

// RootFolders lists the library locations.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.do(ctx, http.MethodGet, "/rootfolder", nil, &folders); err != nil {
		return nil, fmt.Errorf("get root folders: %w", err)
	}
	return folders, nil
}

// QualityProfiles lists the quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := c.do(ctx, http.MethodGet, "/qualityprofile", nil, &profiles); err != nil {
		return nil, fmt.Errorf("get quality profiles: %w", err)
	}
	return profiles, nil
}

// MetadataProfiles lists the metadata profiles.
func (c *Client) MetadataProfiles(ctx context.Context) ([]MetadataProfile, error) {
	var profiles []MetadataProfile
	if err := c.do(ctx, http.MethodGet, "/metadataprofile", nil, &profiles); err != nil {
		return nil, fmt.Errorf("get metadata profiles: %w", err)
	}
	return profiles, nil
}

// SearchArtist runs Lidarr's artist lookup. term is free text or
// "mbid:<musicbrainz id>".
func (c *Client) SearchArtist(ctx context.Context, term string) ([]Artist, error) {
	raw, err := c.lookup(ctx, term)
	if err != nil {
		return nil, err
	}

	artists := make([]Artist, 0, len(raw))
	for _, r := range raw {
		var a Artist
		if err := json.Unmarshal(r, &a); err != nil {
			return nil, fmt.Errorf("decode lookup result: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, nil
}

// lookup keeps results undecoded so they can be posted back intact.
func (c *Client) lookup(ctx context.Context, term string) ([]json.RawMessage, error) {
	var results []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/artist/lookup?term="+url.QueryEscape(term), nil, &results); err != nil {
		return nil, fmt.Errorf("search artist: %w", err)
	}
	return results, nil
}

// Artists lists every artist Lidarr manages.
func (c *Client) Artists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	if err := c.do(ctx, http.MethodGet, "/artist", nil, &artists); err != nil {
		return nil, fmt.Errorf("get artists: %w", err)
	}
	return artists, nil
}

// FindArtist returns the managed artist whose foreign id is catalogID, or
// nil when there is none.
func (c *Client) FindArtist(ctx context.Context, catalogID string) (*Artist, error) {
	artists, err := c.Artists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range artists {
		if artists[i].ForeignArtistID == catalogID {
			return &artists[i], nil
		}
	}
	return nil, nil
}

// ArtistExists reports whether Lidarr already manages catalogID. Any failure
// while listing is treated as absent.
func (c *Client) ArtistExists(ctx context.Context, catalogID string) bool {
	artist, err := c.FindArtist(ctx, catalogID)
	if err != nil {
		log.Warn().Err(err).Str("catalog_id", catalogID).Msg("could not list lidarr artists")
		return false
	}
	return artist != nil
}

// AddArtist creates a monitored artist entry for catalogID and asks Lidarr
// to search for missing albums.
func (c *Client) AddArtist(ctx context.Context, catalogID, kind string) (*Artist, error) {
	if _, err := c.connection(ctx); err != nil {
		return nil, err
	}

	defaults, err := c.ResolveDefaults(ctx)
	if err != nil {
		return nil, err
	}

	results, err := c.lookup(ctx, "mbid:"+catalogID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Debug().Str("catalog_id", catalogID).Str("kind", kind).Msg("mbid lookup empty, retrying with bare id")
		results, err = c.lookup(ctx, catalogID)
		if err != nil {
			return nil, err
		}
	}
	if len(results) == 0 {
		return nil, ErrNotFoundUpstream
	}

	payload, err := addPayload(results[0], defaults)
	if err != nil {
		return nil, err
	}

	var created Artist
	if err := c.do(ctx, http.MethodPost, "/artist", payload, &created); err != nil {
		return nil, fmt.Errorf("add artist: %w", err)
	}

	log.Info().
		Str("catalog_id", catalogID).
		Int("lidarr_id", created.ID).
		Str("artist", created.ArtistName).
		Msg("artist added to lidarr")
	return &created, nil
}

// ResolveDefaults prefers saved settings and fills any gap with the first
// option Lidarr offers.
func (c *Client) ResolveDefaults(ctx context.Context) (Defaults, error) {
	var d Defaults

	rootFolder, err := c.config.Setting(ctx, KeyRootFolder)
	if err != nil {
		return d, fmt.Errorf("read %s: %w", KeyRootFolder, err)
	}
	d.RootFolderPath = rootFolder

	if d.QualityProfileID, err = c.intSetting(ctx, KeyQualityProfile); err != nil {
		return d, err
	}
	if d.MetadataProfileID, err = c.intSetting(ctx, KeyMetadataProfile); err != nil {
		return d, err
	}

	if d.complete() {
		return d, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if d.RootFolderPath == "" {
		g.Go(func() error {
			folders, err := c.RootFolders(gctx)
			if err == nil && len(folders) > 0 {
				d.RootFolderPath = folders[0].Path
			}
			return err
		})
	}
	if d.QualityProfileID == 0 {
		g.Go(func() error {
			profiles, err := c.QualityProfiles(gctx)
			if err == nil && len(profiles) > 0 {
				d.QualityProfileID = profiles[0].ID
			}
			return err
		})
	}
	if d.MetadataProfileID == 0 {
		g.Go(func() error {
			profiles, err := c.MetadataProfiles(gctx)
			if err == nil && len(profiles) > 0 {
				d.MetadataProfileID = profiles[0].ID
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return d, err
	}

	if !d.complete() {
		return d, ErrConfigurationIncomplete
	}
	return d, nil
}

// intSetting treats an unset or non-numeric value as absent.
func (c *Client) intSetting(ctx context.Context, key string) (int, error) {
	value, err := c.config.Setting(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, nil
	}
	return n, nil
}

func addPayload(lookupResult json.RawMessage, d Defaults) ([]byte, error) {
	artist := map[string]any{}
	if err := json.Unmarshal(lookupResult, &artist); err != nil {
		return nil, fmt.Errorf("decode lookup result: %w", err)
	}

	artist["rootFolderPath"] = d.RootFolderPath
	artist["qualityProfileId"] = d.QualityProfileID
	artist["metadataProfileId"] = d.MetadataProfileID
	artist["monitored"] = true
	artist["monitorNewItems"] = "all"
	artist["addOptions"] = map[string]any{
		"monitor":                "all",
		"searchForMissingAlbums": true,
	}

	payload, err := json.Marshal(artist)
	if err != nil {
		return nil, fmt.Errorf("encode artist: %w", err)
	}
	return payload, nil
}
