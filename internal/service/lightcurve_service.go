package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
	"github.com/jengzang/lightcurve-viewer-go/internal/render"
	"github.com/jengzang/lightcurve-viewer-go/internal/repository"
	"github.com/jengzang/lightcurve-viewer-go/internal/stats"
)

// ErrInvalidArgument marks caller mistakes that map to 400
var ErrInvalidArgument = errors.New("invalid argument")

// LightcurveService handles light-curve retrieval and the views derived from it
type LightcurveService struct {
	client *catalog.Client
	cache  *repository.CacheRepository
}

// NewLightcurveService creates a new light-curve service. cache may be nil.
func NewLightcurveService(client *catalog.Client, cache *repository.CacheRepository) *LightcurveService {
	return &LightcurveService{
		client: client,
		cache:  cache,
	}
}

// Get returns the light curve of a source with bands in ascending frequency
func (s *LightcurveService) Get(ctx context.Context, sourceID int64) (*models.LightcurveData, error) {
	if sourceID < 0 {
		return nil, fmt.Errorf("%w: source id %d", ErrInvalidArgument, sourceID)
	}

	payload, err := s.payload(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	var data models.LightcurveData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &catalog.ServiceError{Op: "fetch lightcurve", Err: fmt.Errorf("decode: %w", err)}
	}
	if err := data.Validate(); err != nil {
		return nil, &catalog.ServiceError{Op: "fetch lightcurve", Err: err}
	}
	data.SortBands()
	return &data, nil
}

// Badges returns the median and max flux of the middle band
func (s *LightcurveService) Badges(ctx context.Context, sourceID int64) (models.BadgeStats, error) {
	data, err := s.Get(ctx, sourceID)
	if err != nil {
		return models.BadgeStats{}, err
	}
	badge, err := stats.Badge(data.Bands)
	if err != nil {
		return models.BadgeStats{}, fmt.Errorf("failed to compute badges: %w", err)
	}
	return badge, nil
}

// Variability returns the scatter summary of every band, keyed by band name
func (s *LightcurveService) Variability(ctx context.Context, sourceID int64) (map[string]stats.Variability, error) {
	data, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]stats.Variability, len(data.Bands))
	for _, band := range data.Bands {
		out[band.Band.Name] = stats.Variable(band)
	}
	return out, nil
}

// Table returns every observation as a flat row, flagged ones included
func (s *LightcurveService) Table(ctx context.Context, sourceID int64) ([]models.LightcurveTableRow, error) {
	data, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return plot.TableRows(data), nil
}

// Series returns the plotting-ready series
func (s *LightcurveService) Series(ctx context.Context, sourceID int64, hideFlagged bool) ([]models.PlotSeries, error) {
	data, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return plot.Transform(data, hideFlagged), nil
}

// RenderPNG draws the light curve as a static PNG
func (s *LightcurveService) RenderPNG(ctx context.Context, sourceID int64, hideFlagged bool, width, height int, w io.Writer) error {
	series, err := s.Series(ctx, sourceID, hideFlagged)
	if err != nil {
		return err
	}

	layout := plot.Layout()
	if width > 0 {
		layout.Width = width
	}
	if height > 0 {
		layout.Height = height
	}
	if err := render.PNG(w, series, layout); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

// Download fetches the bulk data file of a source. The body is buffered so a
// failed transfer never reaches the client as a truncated attachment.
func (s *LightcurveService) Download(ctx context.Context, sourceID int64, format models.DataFormat) (*models.DataFile, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: data format %q", ErrInvalidArgument, format)
	}

	var buf bytes.Buffer
	query := url.Values{"ext": []string{string(format)}}
	contentType, err := s.client.DownloadFile(ctx, catalog.LightcurveDownloadPath(sourceID), query, &buf)
	if err != nil {
		log.Printf("[LightcurveService] download of source %d (%s) failed: %v", sourceID, format, err)
		return nil, err
	}
	if contentType == "" {
		contentType = catalog.ContentTypeFor(string(format))
	}

	return &models.DataFile{
		Filename:    catalog.LightcurveFilename(sourceID, format),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

func (s *LightcurveService) payload(ctx context.Context, sourceID int64) ([]byte, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.GetLightcurve(sourceID)
		if err != nil {
			log.Printf("[LightcurveService] cache read for source %d: %v", sourceID, err)
		} else if ok {
			return payload, nil
		}
	}

	payload, err := s.client.FetchLightcurveRaw(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.PutLightcurve(sourceID, payload); err != nil {
			log.Printf("[LightcurveService] cache write for source %d: %v", sourceID, err)
		}
	}
	return payload, nil
}
