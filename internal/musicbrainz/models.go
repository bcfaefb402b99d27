package musicbrainz

// Artist is a catalog artist.
type Artist struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	SortName       string         `json:"sortName,omitempty"`
	Type           string         `json:"type,omitempty"`
	Country        string         `json:"country,omitempty"`
	Disambiguation string         `json:"disambiguation,omitempty"`
	LifeSpan       *LifeSpan      `json:"lifeSpan,omitempty"`
	Tags           []Tag          `json:"tags,omitempty"`
	Score          int            `json:"score,omitempty"`
	ReleaseGroups  []ReleaseGroup `json:"releaseGroups,omitempty"`
}

// LifeSpan bounds an artist's activity. Dates are partial ISO dates.
type LifeSpan struct {
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`
	Ended bool   `json:"ended,omitempty"`
}

// Tag is a folksonomy tag with its vote count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ArtistCredit names an artist credited on a release group.
type ArtistCredit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReleaseGroup is an album-level grouping of releases.
type ReleaseGroup struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	PrimaryType      string         `json:"type,omitempty"`
	SecondaryTypes   []string       `json:"secondaryTypes,omitempty"`
	FirstReleaseDate string         `json:"releaseDate,omitempty"`
	Credits          []ArtistCredit `json:"artistCredits,omitempty"`
	Releases         []Release      `json:"releases,omitempty"`
}

// PrimaryArtist returns the first credited artist, if any.
func (rg ReleaseGroup) PrimaryArtist() (ArtistCredit, bool) {
	if len(rg.Credits) == 0 {
		return ArtistCredit{}, false
	}
	return rg.Credits[0], true
}

// Release is a concrete issue of a release group.
type Release struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status,omitempty"`
	Date       string `json:"date,omitempty"`
	Country    string `json:"country,omitempty"`
	TrackCount int    `json:"trackCount,omitempty"`
}

// ArtistSearch is one page of artist search results.
type ArtistSearch struct {
	Created string   `json:"created"`
	Count   int      `json:"count"`
	Offset  int      `json:"offset"`
	Artists []Artist `json:"artists"`
}

// ReleaseGroupSearch is one page of release group search results.
type ReleaseGroupSearch struct {
	Created       string         `json:"created"`
	Count         int            `json:"count"`
	Offset        int            `json:"offset"`
	ReleaseGroups []ReleaseGroup `json:"releaseGroups"`
}

// ReleaseGroupPage is one page of an artist's release groups.
type ReleaseGroupPage struct {
	ReleaseGroups []ReleaseGroup `json:"releaseGroups"`
	Count         int            `json:"releaseGroupCount"`
}
