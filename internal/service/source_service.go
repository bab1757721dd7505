package service

import (
	"context"
	"fmt"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/sky"
)

// Feed paging limits
const (
	DefaultFeedPageSize = 10
	MaxFeedPageSize     = 100
)

// SourceService handles source lookups, cone searches and the sky viewer
type SourceService struct {
	client *catalog.Client
}

// NewSourceService creates a new source service
func NewSourceService(client *catalog.Client) *SourceService {
	return &SourceService{
		client: client,
	}
}

// List returns every source
func (s *SourceService) List(ctx context.Context) ([]models.Source, error) {
	sources, err := s.client.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []models.Source{}
	}
	return sources, nil
}

// Summary returns a source with its bands and measurement counts
func (s *SourceService) Summary(ctx context.Context, sourceID int64) (*models.SourceSummary, error) {
	return s.client.FetchSourceSummary(ctx, sourceID)
}

// Cone returns the sources within the filter radius, closest first
func (s *SourceService) Cone(ctx context.Context, filter models.ConeFilter) ([]models.NearbySource, error) {
	if err := validateCone(&filter); err != nil {
		return nil, err
	}

	sources, err := s.client.ConeSearch(ctx, filter.RA, filter.Dec, filter.Radius)
	if err != nil {
		return nil, err
	}

	center := models.Source{ID: -1, RA: filter.RA, Dec: filter.Dec}
	return sky.Nearby(center, sources, filter.Radius), nil
}

// Nearby returns the sources around a source, excluding the source itself
func (s *SourceService) Nearby(ctx context.Context, sourceID int64, radius float64) ([]models.NearbySource, error) {
	summary, err := s.client.FetchSourceSummary(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return s.nearby(ctx, summary.Source, radius)
}

// SkyView returns the sky viewer options for a source and its neighbours
func (s *SourceService) SkyView(ctx context.Context, sourceID int64) (models.SkyViewerConfig, error) {
	summary, err := s.client.FetchSourceSummary(ctx, sourceID)
	if err != nil {
		return models.SkyViewerConfig{}, err
	}
	nearby, err := s.nearby(ctx, summary.Source, sky.DefaultConeRadius)
	if err != nil {
		return models.SkyViewerConfig{}, err
	}
	return sky.ViewerConfig(summary.Source, nearby), nil
}

// Feed returns one page of the sources feed
func (s *SourceService) Feed(ctx context.Context, filter models.FeedFilter) (*models.SourcesFeed, error) {
	if filter.Start < 0 {
		return nil, fmt.Errorf("%w: start must not be negative", ErrInvalidArgument)
	}
	if filter.Stop == 0 {
		filter.Stop = filter.Start + DefaultFeedPageSize
	}
	if filter.Stop <= filter.Start {
		return nil, fmt.Errorf("%w: stop must be greater than start", ErrInvalidArgument)
	}
	if filter.Stop-filter.Start > MaxFeedPageSize {
		filter.Stop = filter.Start + MaxFeedPageSize
	}
	return s.client.FetchFeed(ctx, filter.Start, filter.Stop, filter.BandName)
}

func (s *SourceService) nearby(ctx context.Context, target models.Source, radius float64) ([]models.NearbySource, error) {
	if radius <= 0 {
		radius = sky.DefaultConeRadius
	}
	sources, err := s.client.ConeSearch(ctx, target.RA, target.Dec, radius)
	if err != nil {
		return nil, err
	}
	return sky.Nearby(target, sources, radius), nil
}

func validateCone(filter *models.ConeFilter) error {
	if filter.Dec < -90 || filter.Dec > 90 {
		return fmt.Errorf("%w: dec %v out of range", ErrInvalidArgument, filter.Dec)
	}
	if filter.Radius < 0 || filter.Radius > 10 {
		return fmt.Errorf("%w: radius %v out of range", ErrInvalidArgument, filter.Radius)
	}
	if filter.Radius == 0 {
		filter.Radius = sky.DefaultConeRadius
	}
	filter.RA = sky.NormalizeRA(filter.RA)
	return nil
}
