package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the MusicBrainz web service root.
const DefaultBaseURL = "https://musicbrainz.org/ws/2"

// Fetcher performs rate-limited GETs. *ratelimit.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}

// Client reads the MusicBrainz catalog. Every call is one live, rate-limited
// round-trip; nothing is cached or retried.
type Client struct {
	baseURL string
	fetcher Fetcher
}

// New creates a catalog client rooted at baseURL.
func New(baseURL string, fetcher Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
	}
}

// SearchArtists runs a free-text artist search.
func (c *Client) SearchArtists(ctx context.Context, query string, limit, offset int) (*ArtistSearch, error) {
	params := pageParams(limit, offset)
	params.Set("query", query)

	var result mbArtistSearch
	if err := c.get(ctx, "/artist", params, &result); err != nil {
		return nil, err
	}

	return &ArtistSearch{
		Created: result.Created,
		Count:   result.Count,
		Offset:  result.Offset,
		Artists: convertArtists(result.Artists),
	}, nil
}

// SearchReleaseGroups runs a free-text release group (album) search.
func (c *Client) SearchReleaseGroups(ctx context.Context, query string, limit, offset int) (*ReleaseGroupSearch, error) {
	params := pageParams(limit, offset)
	params.Set("query", query)

	var result mbReleaseGroupSearch
	if err := c.get(ctx, "/release-group", params, &result); err != nil {
		return nil, err
	}

	groups := convertReleaseGroups(result.ReleaseGroups)
	if groups == nil {
		groups = []ReleaseGroup{}
	}
	return &ReleaseGroupSearch{
		Created:       result.Created,
		Count:         result.Count,
		Offset:        result.Offset,
		ReleaseGroups: groups,
	}, nil
}

// GetArtist fetches one artist with its release groups and tags.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	params := url.Values{}
	params.Set("inc", "release-groups+tags")

	var result mbArtist
	if err := c.get(ctx, "/artist/"+url.PathEscape(artistID), params, &result); err != nil {
		return nil, err
	}

	artist := convertArtist(result)
	return &artist, nil
}

// GetArtistReleaseGroups browses an artist's release groups. kind filters by
// primary type ("album", "single", ...) and may be empty.
func (c *Client) GetArtistReleaseGroups(ctx context.Context, artistID, kind string, limit, offset int) (*ReleaseGroupPage, error) {
	params := pageParams(limit, offset)
	params.Set("artist", artistID)
	if kind != "" {
		params.Set("type", kind)
	}

	var result mbReleaseGroupBrowse
	if err := c.get(ctx, "/release-group", params, &result); err != nil {
		return nil, err
	}

	groups := convertReleaseGroups(result.ReleaseGroups)
	if groups == nil {
		groups = []ReleaseGroup{}
	}
	return &ReleaseGroupPage{ReleaseGroups: groups, Count: result.Count}, nil
}

// GetReleaseGroup fetches a release group with its releases and credits.
func (c *Client) GetReleaseGroup(ctx context.Context, releaseGroupID string) (*ReleaseGroup, error) {
	params := url.Values{}
	params.Set("inc", "releases+artist-credits")

	var result mbReleaseGroup
	if err := c.get(ctx, "/release-group/"+url.PathEscape(releaseGroupID), params, &result); err != nil {
		return nil, err
	}

	group := convertReleaseGroup(result)
	return &group, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	params.Set("fmt", "json")
	apiURL := c.baseURL + endpoint + "?" + encode(params)

	resp, err := c.fetcher.Fetch(ctx, apiURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func pageParams(limit, offset int) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return params
}

// encode is url.Values.Encode that keeps '+' literal in inc lists, which
// the web service expects unescaped.
func encode(params url.Values) string {
	return strings.ReplaceAll(params.Encode(), "%2B", "+")
}
