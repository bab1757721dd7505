package service

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/repository"
)

// CutoutService fetches cutout images through the cache. It also serves as the
// cutout fetcher of every plot session.
type CutoutService struct {
	client *catalog.Client
	cache  *repository.CacheRepository
}

// NewCutoutService creates a new cutout service. cache may be nil.
func NewCutoutService(client *catalog.Client, cache *repository.CacheRepository) *CutoutService {
	return &CutoutService{
		client: client,
		cache:  cache,
	}
}

// FetchCutoutImage returns the cutout of a point. Confirmed misses (404 or 410)
// are cached too, so a point without a cutout is not asked for again until the
// entry expires. Other upstream failures still read as NotFound but are retried
// on the next request.
func (s *CutoutService) FetchCutoutImage(ctx context.Context, pointID int64, format models.CutoutFormat) (models.Cutout, error) {
	if !format.Valid() {
		return models.Cutout{}, fmt.Errorf("%w: cutout format %q", ErrInvalidArgument, format)
	}

	if s.cache != nil {
		cutout, ok, err := s.cache.GetCutout(pointID, format)
		if err != nil {
			log.Printf("[CutoutService] cache read for point %d: %v", pointID, err)
		} else if ok {
			return cutout, nil
		}
	}

	cutout, err := s.client.FetchCutoutImage(ctx, pointID, format)
	if err != nil {
		return cutout, err
	}

	if s.cache != nil && cacheable(cutout) {
		if err := s.cache.PutCutout(cutout); err != nil {
			log.Printf("[CutoutService] cache write for point %d: %v", pointID, err)
		}
	}
	return cutout, nil
}

func cacheable(cutout models.Cutout) bool {
	if !cutout.NotFound {
		return true
	}
	switch cutout.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return true
	}
	if cutout.StatusCode != 0 {
		log.Printf("[CutoutService] upstream answered %d for point %d, not caching", cutout.StatusCode, cutout.PointID)
	}
	return false
}

// Download returns the cutout as an attachment
func (s *CutoutService) Download(ctx context.Context, pointID int64, format models.CutoutFormat) (*models.DataFile, error) {
	cutout, err := s.FetchCutoutImage(ctx, pointID, format)
	if err != nil {
		log.Printf("[CutoutService] download of point %d (%s) failed: %v", pointID, format, err)
		return nil, err
	}
	if cutout.NotFound {
		return nil, fmt.Errorf("cutout %d: %w", pointID, catalog.ErrNotFound)
	}
	return &models.DataFile{
		Filename:    catalog.CutoutFilename(pointID, format),
		ContentType: cutout.ContentType,
		Data:        cutout.Data,
	}, nil
}
