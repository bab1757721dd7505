package host

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/events"
	"github.com/jengzang/lightcurve-viewer-go/internal/interaction"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
)

var (
	// ErrNotMounted is returned by operations that need a live surface
	ErrNotMounted = errors.New("host: plot not mounted")
	// ErrNoImage is returned when the tooltip has no cutout to act on
	ErrNoImage = errors.New("host: no cutout image available")
	// ErrBadFormat is returned for an unknown cutout format
	ErrBadFormat = errors.New("host: unsupported cutout format")
)

// Surface is a plot surface the host can render into and restyle
type Surface interface {
	interaction.Surface
	Render(series []models.PlotSeries, layout models.PlotLayout) error
	Destroy()
}

// CutoutFetcher retrieves cutout images
type CutoutFetcher interface {
	FetchCutoutImage(ctx context.Context, pointID int64, format models.CutoutFormat) (models.Cutout, error)
}

// Options configures a Host
type Options struct {
	NewSurface      func() Surface
	Fetcher         CutoutFetcher
	Blobs           *blobstore.Store
	Owner           string // session id stamped on stored cutouts
	Bus             *events.Bus
	Layout          models.PlotLayout
	CutoutURLPrefix string // e.g. "/api/v1/cutouts/"
	FetchTimeout    time.Duration
}

// Host owns one plot surface for its lifetime, routes surface events into the
// interaction machine and renders the tooltip. All methods except the fetch
// goroutines run on the owning session's loop.
type Host struct {
	opts Options

	surface Surface
	machine *interaction.Machine
	format  models.CutoutFormat
	escape  *events.Subscription

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	results chan interaction.FetchResult
}

// New creates an unmounted host
func New(opts Options) *Host {
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Blobs == nil {
		opts.Blobs = blobstore.New("/api/v1/blobs/")
	}
	if opts.CutoutURLPrefix == "" {
		opts.CutoutURLPrefix = "/api/v1/cutouts/"
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Layout.Width == 0 {
		opts.Layout = plot.Layout()
	}
	return &Host{
		opts:    opts,
		format:  models.CutoutPNG,
		results: make(chan interaction.FetchResult, 8),
	}
}

// Results delivers finished cutout fetches. The owner passes each one to Resolve.
func (h *Host) Results() <-chan interaction.FetchResult {
	return h.results
}

// Mounted reports whether the host has a live surface
func (h *Host) Mounted() bool {
	return h.surface != nil
}

// Machine exposes the interaction machine of the mounted plot
func (h *Host) Machine() *interaction.Machine {
	return h.machine
}

// Mount creates the surface and renders series. Mounting twice re-renders.
func (h *Host) Mount(series []models.PlotSeries) error {
	if h.surface != nil {
		return h.Update(series)
	}
	if h.opts.NewSurface == nil {
		return fmt.Errorf("mount: no surface factory")
	}

	surface := h.opts.NewSurface()
	if err := surface.Render(series, h.opts.Layout); err != nil {
		surface.Destroy()
		return fmt.Errorf("render plot: %w", err)
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.surface = surface
	h.machine = interaction.NewMachine(surface, h.opts.Blobs, series)
	log.Printf("[Host] mounted plot with %d series", len(series))
	return nil
}

// Update re-renders after the data or the flag filter changed. Any open
// tooltip is dropped; the new render starts at baseline.
func (h *Host) Update(series []models.PlotSeries) error {
	if h.surface == nil {
		return ErrNotMounted
	}
	if err := h.surface.Render(series, h.opts.Layout); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	h.machine.Reset(series)
	h.stopEscape()
	h.format = models.CutoutPNG
	return nil
}

// Unmount destroys the surface, cancels the escape listener and pending
// fetches, and releases the tooltip image
func (h *Host) Unmount() {
	if h.surface == nil {
		return
	}
	h.machine.Release()
	h.stopEscape()
	h.cancel()
	h.wg.Wait()
	h.drain()

	h.surface.Destroy()
	h.surface = nil
	h.machine = nil
	log.Printf("[Host] unmounted plot")
}

// Hover highlights a point
func (h *Host) Hover(series, point int) {
	if h.machine != nil {
		h.machine.Hover(series, point)
	}
}

// Unhover reverts a hovered point
func (h *Host) Unhover(series, point int) {
	if h.machine != nil {
		h.machine.Unhover(series, point)
	}
}

// Click selects a point, opens its tooltip at the pointer position and starts
// the cutout fetch
func (h *Host) Click(series, point int, clientX, clientY float64) bool {
	if h.machine == nil {
		return false
	}
	req, ok := h.machine.Click(series, point, models.Anchor{ClientX: clientX, ClientY: clientY})
	if !ok {
		return false
	}
	h.format = models.CutoutPNG
	h.startEscape()
	h.fetch(req)
	return true
}

// ViewChange closes the tooltip after zoom, pan or relayout
func (h *Host) ViewChange() bool {
	if h.machine == nil {
		return false
	}
	return h.closed(h.machine.ViewChange())
}

// CloseTooltip closes the tooltip from its close button
func (h *Host) CloseTooltip() bool {
	if h.machine == nil {
		return false
	}
	return h.closed(h.machine.Close())
}

// KeyDown publishes a key press on the session bus
func (h *Host) KeyDown(key string) {
	h.opts.Bus.Publish(events.TopicKeyDown, key)
}

// Resolve applies a finished fetch
func (h *Host) Resolve(res interaction.FetchResult) bool {
	if h.machine == nil {
		if res.Image != nil {
			h.opts.Blobs.Revoke(res.Image.Token)
		}
		return false
	}
	return h.machine.Resolve(res)
}

// SelectFormat picks the cutout download format. It is only offered once the
// cutout image is shown.
func (h *Host) SelectFormat(format models.CutoutFormat) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %q", ErrBadFormat, format)
	}
	if !h.imageReady() {
		return ErrNoImage
	}
	h.format = format
	return nil
}

// Download returns the browser action that saves the cutout in the selected format
func (h *Host) Download() (models.DownloadAction, error) {
	if !h.imageReady() {
		return models.DownloadAction{}, ErrNoImage
	}
	t := h.machine.Tooltip()
	return models.DownloadAction{
		URL:      fmt.Sprintf("%s%d?ext=%s&download=1", h.opts.CutoutURLPrefix, t.Point.ID, h.format),
		Filename: catalog.CutoutFilename(t.Point.ID, h.format),
	}, nil
}

// EscapeListening reports whether the escape listener is registered
func (h *Host) EscapeListening() bool {
	return h.escape != nil
}

func (h *Host) imageReady() bool {
	if h.machine == nil {
		return false
	}
	t := h.machine.Tooltip()
	return t != nil && t.ImageState == models.TooltipImageReady
}

func (h *Host) closed(changed bool) bool {
	if changed {
		h.stopEscape()
	}
	return changed
}

func (h *Host) startEscape() {
	if h.escape != nil {
		return
	}
	h.escape = h.opts.Bus.Subscribe(events.TopicKeyDown, func(payload any) {
		if key, _ := payload.(string); key == events.KeyEscape && h.machine != nil {
			h.closed(h.machine.Escape())
		}
	})
}

func (h *Host) stopEscape() {
	h.escape.Unsubscribe()
	h.escape = nil
}

func (h *Host) fetch(req interaction.FetchRequest) {
	if h.opts.Fetcher == nil {
		h.results <- interaction.FetchResult{Key: req.Key, NotFound: true}
		return
	}

	ctx := h.ctx
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		fetchCtx, cancel := context.WithTimeout(ctx, h.opts.FetchTimeout)
		defer cancel()

		res := interaction.FetchResult{Key: req.Key}
		cutout, err := h.opts.Fetcher.FetchCutoutImage(fetchCtx, req.PointID, req.Format)
		switch {
		case err != nil:
			res.Err = err
		case cutout.NotFound:
			res.NotFound = true
		default:
			ref := h.opts.Blobs.PutFor(h.opts.Owner, cutout.ContentType, cutout.Data)
			res.Image = &ref
		}

		select {
		case h.results <- res:
		case <-ctx.Done():
			if res.Image != nil {
				h.opts.Blobs.Revoke(res.Image.Token)
			}
		}
	}()
}

// drain releases images of results nobody will resolve
func (h *Host) drain() {
	for {
		select {
		case res := <-h.results:
			if res.Image != nil {
				h.opts.Blobs.Revoke(res.Image.Token)
			}
		default:
			return
		}
	}
}
