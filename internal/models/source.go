package models

// CrossMatch is a catalog counterpart of a source
type CrossMatch struct {
	Name string `json:"name"`
}

// SourceExtra carries optional source metadata
type SourceExtra struct {
	CrossMatches []CrossMatch `json:"cross_matches"`
}

// Source is a detected source as returned by the catalog
type Source struct {
	ID       int64        `json:"id"`
	RA       float64      `json:"ra"`
	Dec      float64      `json:"dec"`
	Variable bool         `json:"variable"`
	Extra    *SourceExtra `json:"extra,omitempty"`
}

// CrossMatches returns the cross-match list, never nil
func (s Source) CrossMatches() []CrossMatch {
	if s.Extra == nil || s.Extra.CrossMatches == nil {
		return []CrossMatch{}
	}
	return s.Extra.CrossMatches
}

// Measurement summarizes the observations of one band
type Measurement struct {
	SourceID int64  `json:"source_id"`
	BandName string `json:"band_name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Count    int    `json:"count"`
}

// SourceSummary is the payload of GET /sources/{id}/summary
type SourceSummary struct {
	Source       Source        `json:"source"`
	Bands        []Band        `json:"bands"`
	Measurements []Measurement `json:"measurements"`
}

// NearbySource is a cone search hit ranked by separation from the queried source
type NearbySource struct {
	Source
	SeparationDeg    float64 `json:"separation_deg"`
	PositionAngleDeg float64 `json:"position_angle_deg"` // east of north
}

// ConeFilter represents cone search query parameters
type ConeFilter struct {
	RA     float64 `form:"ra"`
	Dec    float64 `form:"dec"`
	Radius float64 `form:"radius"` // degrees
}

// FeedFilter represents paging parameters of the sources feed
type FeedFilter struct {
	Start    int    `form:"start"`
	Stop     int    `form:"stop"`
	BandName string `form:"band_name"`
}

// SourcesFeedItem is one source entry in the paginated feed
type SourcesFeedItem struct {
	SourceID int64     `json:"source_id"`
	RA       float64   `json:"ra"`
	Dec      float64   `json:"dec"`
	Time     []string  `json:"time"`
	Flux     []float64 `json:"flux"`
	Nanoplot string    `json:"nanoplot,omitempty"`
}

// SourcesFeed is the payload of GET /sources/feed
type SourcesFeed struct {
	Start                int               `json:"start"`
	Stop                 int               `json:"stop"`
	BandName             string            `json:"band_name"`
	TotalNumberOfSources int               `json:"total_number_of_sources"`
	Items                []SourcesFeedItem `json:"items"`
}

// SkyMarker is one catalog marker drawn in the sky viewer
type SkyMarker struct {
	Name  string  `json:"name"`
	RA    float64 `json:"ra"`
	Dec   float64 `json:"dec"`
	Label string  `json:"label"`
}

// SkyViewerConfig is everything the embedded sky viewer needs to initialize
type SkyViewerConfig struct {
	Survey     string      `json:"survey"`
	FOV        float64     `json:"fov"` // degrees
	CooFrame   string      `json:"coo_frame"`
	Projection string      `json:"projection"`
	Target     SkyMarker   `json:"target"`
	Markers    []SkyMarker `json:"markers"`
}

// LoginLink drives the log in / log out affordance
type LoginLink struct {
	Authenticated bool   `json:"authenticated"`
	Text          string `json:"text"`
	Href          string `json:"href"`
}
