package models

// SelectionKey identifies one click. Generation grows with every click so a
// re-click of the same point still produces a fresh key.
type SelectionKey struct {
	Series     int    `json:"series"`
	Point      int    `json:"point"`
	Generation uint64 `json:"generation"`
}

// Anchor is the pointer position captured at click time
type Anchor struct {
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
}

// TooltipImageState is the state of the cutout shown in the tooltip
type TooltipImageState string

const (
	TooltipImagePending  TooltipImageState = "pending"
	TooltipImageReady    TooltipImageState = "ready"
	TooltipImageNotFound TooltipImageState = "not_found"
)

// TooltipView is the rendered tooltip, ready for the browser
type TooltipView struct {
	Key            SelectionKey      `json:"key"`
	Left           float64           `json:"left"`
	Top            float64           `json:"top"`
	PointID        int64             `json:"point_id"`
	BandName       string            `json:"band_name"`
	SwatchColor    string            `json:"swatch_color"`
	Time           string            `json:"time"`
	Flux           string            `json:"flux"`
	ImageState     TooltipImageState `json:"image_state"`
	ImageURL       string            `json:"image_url,omitempty"`
	Formats        []CutoutFormat    `json:"formats,omitempty"`
	SelectedFormat CutoutFormat      `json:"selected_format,omitempty"`
	CanDownload    bool              `json:"can_download"`
	Flags          string            `json:"flags"`
	CloseTitle     string            `json:"close_title"`
}
