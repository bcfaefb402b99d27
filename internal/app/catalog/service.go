package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"recordstore/internal/musicbrainz"
)

// Enrichment bounds: only this many leading results get real cover lookups.
const (
	artistSearchCoverLimit = 10
	discographyCoverLimit  = 20
	discographyPageSize    = 100
	maxTags                = 10

	defaultLimit = 25
	maxLimit     = 100

	unknownArtist = "Unknown Artist"
)

// Catalog is the metadata catalog the service reads.
type Catalog interface {
	SearchArtists(ctx context.Context, query string, limit, offset int) (*musicbrainz.ArtistSearch, error)
	SearchReleaseGroups(ctx context.Context, query string, limit, offset int) (*musicbrainz.ReleaseGroupSearch, error)
	GetArtist(ctx context.Context, artistID string) (*musicbrainz.Artist, error)
	GetArtistReleaseGroups(ctx context.Context, artistID, kind string, limit, offset int) (*musicbrainz.ReleaseGroupPage, error)
}

// Covers resolves cover art. A nil URL means none is available.
type Covers interface {
	CoverArt(ctx context.Context, releaseGroupID string) *string
	Batch(ctx context.Context, releaseGroupIDs []string) map[string]*string
}

// Artist is a search hit with a representative cover.
type Artist struct {
	musicbrainz.Artist
	CoverURL *string `json:"coverUrl"`
}

// ArtistResults is one page of artist search results.
type ArtistResults struct {
	Created string   `json:"created,omitempty"`
	Count   int      `json:"count"`
	Offset  int      `json:"offset"`
	Artists []Artist `json:"artists"`
}

// Album is a release group search hit.
type Album struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	ArtistName     string   `json:"artistName"`
	ArtistID       string   `json:"artistId,omitempty"`
	Type           string   `json:"type,omitempty"`
	SecondaryTypes []string `json:"secondaryTypes,omitempty"`
	ReleaseDate    string   `json:"releaseDate,omitempty"`
	CoverURL       *string  `json:"coverUrl"`
}

// AlbumResults is one page of album search results.
type AlbumResults struct {
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Albums []Album `json:"albums"`
}

// ReleaseGroup is one entry of an artist's discography.
type ReleaseGroup struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Type           string   `json:"type,omitempty"`
	SecondaryTypes []string `json:"secondaryTypes,omitempty"`
	ReleaseDate    string   `json:"releaseDate,omitempty"`
	CoverURL       *string  `json:"coverUrl"`
}

// ArtistDetail is an artist with its discography, newest first.
type ArtistDetail struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Type              string                `json:"type,omitempty"`
	Country           string                `json:"country,omitempty"`
	Disambiguation    string                `json:"disambiguation,omitempty"`
	LifeSpan          *musicbrainz.LifeSpan `json:"lifeSpan,omitempty"`
	Tags              []musicbrainz.Tag     `json:"tags"`
	ReleaseGroups     []ReleaseGroup        `json:"releaseGroups"`
	ReleaseGroupCount int                   `json:"releaseGroupCount"`
}

// Service exposes catalog browsing with cover art enrichment.
type Service interface {
	SearchArtists(ctx context.Context, query string, limit, offset int) (*ArtistResults, error)
	SearchAlbums(ctx context.Context, query string, limit, offset int) (*AlbumResults, error)
	ArtistDetail(ctx context.Context, artistID string) (*ArtistDetail, error)
}

type service struct {
	catalog     Catalog
	covers      Covers
	concurrency int
}

// New wires a Service. concurrency caps parallel per-item enrichment.
func New(catalog Catalog, covers Covers, concurrency int) Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &service{catalog: catalog, covers: covers, concurrency: concurrency}
}

func (s *service) SearchArtists(ctx context.Context, query string, limit, offset int) (*ArtistResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	found, err := s.catalog.SearchArtists(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}

	artists := make([]Artist, len(found.Artists))
	for i, a := range found.Artists {
		artists[i] = Artist{Artist: a}
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range artists {
		if i >= artistSearchCoverLimit {
			break
		}
		g.Go(func() error {
			artists[i].CoverURL = s.artistCover(ctx, artists[i].ID)
			return nil
		})
	}
	_ = g.Wait()

	return &ArtistResults{
		Created: found.Created,
		Count:   found.Count,
		Offset:  found.Offset,
		Artists: artists,
	}, nil
}

// artistCover uses the cover of the artist's first album. Failures yield nil.
func (s *service) artistCover(ctx context.Context, artistID string) *string {
	page, err := s.catalog.GetArtistReleaseGroups(ctx, artistID, "album", 1, 0)
	if err != nil {
		log.Debug().Err(err).Str("artist_id", artistID).Msg("no album for artist cover")
		return nil
	}
	if len(page.ReleaseGroups) == 0 {
		return nil
	}
	return s.covers.CoverArt(ctx, page.ReleaseGroups[0].ID)
}

func (s *service) SearchAlbums(ctx context.Context, query string, limit, offset int) (*AlbumResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	found, err := s.catalog.SearchReleaseGroups(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search release groups: %w", err)
	}

	ids := make([]string, len(found.ReleaseGroups))
	for i, rg := range found.ReleaseGroups {
		ids[i] = rg.ID
	}
	covers := s.covers.Batch(ctx, ids)

	albums := make([]Album, 0, len(found.ReleaseGroups))
	for _, rg := range found.ReleaseGroups {
		album := Album{
			ID:             rg.ID,
			Title:          rg.Title,
			ArtistName:     unknownArtist,
			Type:           rg.PrimaryType,
			SecondaryTypes: rg.SecondaryTypes,
			ReleaseDate:    rg.FirstReleaseDate,
			CoverURL:       covers[rg.ID],
		}
		if credit, ok := rg.PrimaryArtist(); ok {
			album.ArtistID = credit.ID
			if credit.Name != "" {
				album.ArtistName = credit.Name
			}
		}
		albums = append(albums, album)
	}

	return &AlbumResults{Count: found.Count, Offset: found.Offset, Albums: albums}, nil
}

func (s *service) ArtistDetail(ctx context.Context, artistID string) (*ArtistDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artist, err := s.catalog.GetArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	page, err := s.catalog.GetArtistReleaseGroups(ctx, artistID, "", discographyPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("get release groups: %w", err)
	}

	var ids []string
	for i, rg := range page.ReleaseGroups {
		if i >= discographyCoverLimit {
			break
		}
		ids = append(ids, rg.ID)
	}
	covers := s.covers.Batch(ctx, ids)

	groups := make([]ReleaseGroup, 0, len(page.ReleaseGroups))
	for _, rg := range page.ReleaseGroups {
		groups = append(groups, ReleaseGroup{
			ID:             rg.ID,
			Title:          rg.Title,
			Type:           rg.PrimaryType,
			SecondaryTypes: rg.SecondaryTypes,
			ReleaseDate:    rg.FirstReleaseDate,
			CoverURL:       covers[rg.ID],
		})
	}
	slices.SortStableFunc(groups, newestFirst)

	tags := artist.Tags
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	if tags == nil {
		tags = []musicbrainz.Tag{}
	}

	return &ArtistDetail{
		ID:                artist.ID,
		Name:              artist.Name,
		Type:              artist.Type,
		Country:           artist.Country,
		Disambiguation:    artist.Disambiguation,
		LifeSpan:          artist.LifeSpan,
		Tags:              tags,
		ReleaseGroups:     groups,
		ReleaseGroupCount: page.Count,
	}, nil
}

// newestFirst orders by release date descending with undated entries last.
func newestFirst(a, b ReleaseGroup) int {
	switch {
	case a.ReleaseDate == b.ReleaseDate:
		return 0
	case a.ReleaseDate == "":
		return 1
	case b.ReleaseDate == "":
		return -1
	}
	return strings.Compare(b.ReleaseDate, a.ReleaseDate)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
