package session

import "github.com/jengzang/lightcurve-viewer-go/internal/models"

// Inbound event types sent by the browser
const (
	EventClick         = "click"
	EventHover         = "hover"
	EventUnhover       = "unhover"
	EventRelayout      = "relayout"
	EventKeyDown       = "keydown"
	EventClose         = "close"
	EventFormat        = "format"
	EventDownload      = "download"
	EventToggleFlagged = "toggle_flagged"
)

// Outbound message types sent to the browser
const (
	TypeRender   = "render"
	TypeRestyle  = "restyle"
	TypePurge    = "purge"
	TypeTooltip  = "tooltip"
	TypeDownload = "download"
	TypeError    = "error"
)

// Event is one browser interaction
type Event struct {
	Type        string  `json:"type"`
	Series      int     `json:"series"`
	Point       int     `json:"point"`
	ClientX     float64 `json:"client_x"`
	ClientY     float64 `json:"client_y"`
	Key         string  `json:"key,omitempty"`
	Format      string  `json:"format,omitempty"`
	HideFlagged bool    `json:"hide_flagged,omitempty"`
}

// Restyle patches the outline width of one marker
type Restyle struct {
	Series int     `json:"series"`
	Point  int     `json:"point"`
	Width  float64 `json:"width"`
}

// Message is one command for the browser. A tooltip message without a
// tooltip closes it.
type Message struct {
	Type     string                 `json:"type"`
	Series   []models.PlotSeries    `json:"series,omitempty"`
	Layout   *models.PlotLayout     `json:"layout,omitempty"`
	Restyle  *Restyle               `json:"restyle,omitempty"`
	Tooltip  *models.TooltipView    `json:"tooltip,omitempty"`
	Download *models.DownloadAction `json:"download,omitempty"`
	Error    string                 `json:"error,omitempty"`
}
