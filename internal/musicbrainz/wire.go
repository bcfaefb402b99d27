package musicbrainz

// Wire shapes of the MusicBrainz web service (fmt=json). Field names are
// hyphenated upstream; they never leave this package.

type mbLifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}

type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type mbArtist struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	SortName       string           `json:"sort-name"`
	Type           string           `json:"type"`
	Country        string           `json:"country"`
	Disambiguation string           `json:"disambiguation"`
	LifeSpan       *mbLifeSpan      `json:"life-span"`
	Tags           []mbTag          `json:"tags"`
	Score          int              `json:"score"`
	ReleaseGroups  []mbReleaseGroup `json:"release-groups"`
}

type mbArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type mbReleaseGroup struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	PrimaryType      string           `json:"primary-type"`
	SecondaryTypes   []string         `json:"secondary-types"`
	FirstReleaseDate string           `json:"first-release-date"`
	ArtistCredit     []mbArtistCredit `json:"artist-credit"`
	Releases         []mbRelease      `json:"releases"`
}

type mbRelease struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Date       string `json:"date"`
	Country    string `json:"country"`
	TrackCount int    `json:"track-count"`
}

type mbArtistSearch struct {
	Created string     `json:"created"`
	Count   int        `json:"count"`
	Offset  int        `json:"offset"`
	Artists []mbArtist `json:"artists"`
}

type mbReleaseGroupSearch struct {
	Created       string           `json:"created"`
	Count         int              `json:"count"`
	Offset        int              `json:"offset"`
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
}

type mbReleaseGroupBrowse struct {
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
	Count         int              `json:"release-group-count"`
}
