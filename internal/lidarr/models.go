package lidarr

// Setting keys read from the integration configuration on every call.
const (
	KeyURL             = "lidarr_url"
	KeyAPIKey          = "lidarr_api_key"
	KeyRootFolder      = "lidarr_root_folder"
	KeyQualityProfile  = "lidarr_quality_profile"
	KeyMetadataProfile = "lidarr_metadata_profile"
)

// Artist is an artist entry managed by Lidarr. ForeignArtistID is the
// MusicBrainz artist id.
type Artist struct {
	ID                int    `json:"id"`
	ArtistName        string `json:"artistName"`
	ForeignArtistID   string `json:"foreignArtistId"`
	Status            string `json:"status,omitempty"`
	Path              string `json:"path,omitempty"`
	QualityProfileID  int    `json:"qualityProfileId,omitempty"`
	MetadataProfileID int    `json:"metadataProfileId,omitempty"`
	Monitored         bool   `json:"monitored"`
}

// RootFolder is a library location known to Lidarr.
type RootFolder struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

// QualityProfile is a Lidarr quality profile.
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MetadataProfile is a Lidarr metadata profile.
type MetadataProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ConnectionResult reports the outcome of a status probe.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

type systemStatus struct {
	Version string `json:"version"`
}

// Defaults are the effective add-artist options.
type Defaults struct {
	RootFolderPath    string
	QualityProfileID  int
	MetadataProfileID int
}

func (d Defaults) complete() bool {
	return d.RootFolderPath != "" && d.QualityProfileID > 0 && d.MetadataProfileID > 0
}
