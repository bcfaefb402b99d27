package musicbrainz

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recordstore/internal/ratelimit"
)

// directFetcher skips rate limiting so tests run instantly.
type directFetcher struct {
	client *http.Client
	urls   []string
}

func (f *directFetcher) Fetch(ctx context.Context, url string) (*http.Response, error) {
	f.urls = append(f.urls, url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ratelimit.UpstreamError{Service: "musicbrainz", Status: resp.StatusCode}
	}
	return resp, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *directFetcher) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := &directFetcher{client: srv.Client()}
	return New(srv.URL, f), f
}

func TestSearchArtists(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artist" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "boards of canada" || q.Get("limit") != "5" || q.Get("offset") != "10" || q.Get("fmt") != "json" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{
			"created": "2024-01-01T00:00:00Z",
			"count": 1,
			"offset": 10,
			"artists": [{
				"id": "69158f97-4c07-4c4e-baf8-4e4ab1ed666e",
				"name": "Boards of Canada",
				"sort-name": "Boards of Canada",
				"type": "Group",
				"country": "GB",
				"life-span": {"begin": "1986", "ended": false},
				"tags": [{"name": "idm", "count": 12}],
				"score": 100
			}]
		}`)
	})

	result, err := client.SearchArtists(context.Background(), "boards of canada", 5, 10)
	if err != nil {
		t.Fatalf("SearchArtists: %v", err)
	}
	if result.Count != 1 || result.Offset != 10 || len(result.Artists) != 1 {
		t.Fatalf("unexpected result %#v", result)
	}
	a := result.Artists[0]
	if a.SortName != "Boards of Canada" || a.LifeSpan == nil || a.LifeSpan.Begin != "1986" {
		t.Fatalf("hyphenated fields not mapped: %#v", a)
	}
	if len(a.Tags) != 1 || a.Tags[0].Name != "idm" {
		t.Fatalf("tags not mapped: %#v", a.Tags)
	}
}

func TestSearchReleaseGroupsMapsCredits(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"count": 1, "offset": 0,
			"release-groups": [{
				"id": "rg-1",
				"title": "Geogaddi",
				"primary-type": "Album",
				"secondary-types": ["Compilation"],
				"first-release-date": "2002-02-18",
				"artist-credit": [{"name": "BoC", "artist": {"id": "a-1", "name": "Boards of Canada"}}]
			}]
		}`)
	})

	result, err := client.SearchReleaseGroups(context.Background(), "geogaddi", 25, 0)
	if err != nil {
		t.Fatalf("SearchReleaseGroups: %v", err)
	}
	rg := result.ReleaseGroups[0]
	if rg.PrimaryType != "Album" || rg.FirstReleaseDate != "2002-02-18" || rg.SecondaryTypes[0] != "Compilation" {
		t.Fatalf("unexpected release group %#v", rg)
	}
	credit, ok := rg.PrimaryArtist()
	if !ok || credit.ID != "a-1" || credit.Name != "Boards of Canada" {
		t.Fatalf("unexpected credit %#v", credit)
	}
}

func TestGetArtistIncludesReleaseGroups(t *testing.T) {
	client, f := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artist/a-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id": "a-1", "name": "Boards of Canada",
			"release-groups": [{"id": "rg-1", "title": "Geogaddi"}]}`)
	})

	artist, err := client.GetArtist(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if len(artist.ReleaseGroups) != 1 || artist.ReleaseGroups[0].ID != "rg-1" {
		t.Fatalf("unexpected release groups %#v", artist.ReleaseGroups)
	}
	if want := "inc=release-groups+tags"; !strings.Contains(f.urls[0], want) {
		t.Fatalf("expected %q in %s", want, f.urls[0])
	}
}

func TestGetArtistReleaseGroupsOptionalType(t *testing.T) {
	var queries []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"release-groups": [], "release-group-count": 42}`)
	})

	page, err := client.GetArtistReleaseGroups(context.Background(), "a-1", "album", 1, 0)
	if err != nil {
		t.Fatalf("GetArtistReleaseGroups: %v", err)
	}
	if page.Count != 42 || page.ReleaseGroups == nil {
		t.Fatalf("unexpected page %#v", page)
	}
	if _, err := client.GetArtistReleaseGroups(context.Background(), "a-1", "", 100, 0); err != nil {
		t.Fatalf("GetArtistReleaseGroups: %v", err)
	}

	if !strings.Contains(queries[0], "type=album") {
		t.Fatalf("expected type filter in %s", queries[0])
	}
	if strings.Contains(queries[1], "type=") {
		t.Fatalf("expected no type filter in %s", queries[1])
	}
}

func TestUpstreamErrorPropagates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchArtists(context.Background(), "x", 25, 0)
	var upstream *ratelimit.UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected upstream 503, got %v", err)
	}
}
