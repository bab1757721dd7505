package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/database"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/repository"
)

const lightcurveJSON = `{
  "source": {"id": 12, "ra": 10, "dec": -20},
  "bands": [
    {"band": {"name": "f220", "telescope": "LAT", "instrument": "HF", "frequency": 220},
     "id": [1, 2], "time": ["2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"],
     "i_flux": [8, 9], "i_uncertainty": [1, 1], "extra": [null, null]},
    {"band": {"name": "f090", "telescope": "LAT", "instrument": "MF", "frequency": 90},
     "id": [3, 4], "time": ["2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z"],
     "i_flux": [1, 2], "i_uncertainty": [0.1, 0.1], "extra": [{"flags": ["rfi"]}, null]},
    {"band": {"name": "f150", "telescope": "LAT", "instrument": "MF", "frequency": 150},
     "id": [5, 6, 7], "time": ["2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "2024-01-04T00:00:00Z"],
     "i_flux": [4, 10, 5], "i_uncertainty": [0.5, 0.5, 0.5], "extra": [null, null, null]}
  ]
}`

const summaryJSON = `{"source": {"id": 12, "ra": 10, "dec": -20}, "bands": [], "measurements": []}`

type catalogStub struct {
	lightcurveHits atomic.Int32
	cutoutHits     atomic.Int32
}

func newCatalog(t *testing.T) (*catalog.Client, *catalogStub) {
	t.Helper()
	stub := &catalogStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/lightcurves/12/all", func(w http.ResponseWriter, r *http.Request) {
		stub.lightcurveHits.Add(1)
		_, _ = w.Write([]byte(lightcurveJSON))
	})
	mux.HandleFunc("/lightcurves/12/all/download", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id\n1\n"))
	})
	mux.HandleFunc("/sources/12/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(summaryJSON))
	})
	mux.HandleFunc("/sources/cone/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 12, "ra": 10, "dec": -20}, {"id": 30, "ra": 10, "dec": -19}, {"id": 31, "ra": 10, "dec": -20.2}]`))
	})
	mux.HandleFunc("/sources/feed", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_, _ = w.Write([]byte(`{"start": ` + q.Get("start") + `, "stop": ` + q.Get("stop") + `, "band_name": "` + q.Get("band_name") + `", "total_number_of_sources": 2, "items": []}`))
	})
	mux.HandleFunc("/cutouts/flux/", func(w http.ResponseWriter, r *http.Request) {
		stub.cutoutHits.Add(1)
		if r.URL.Path != "/cutouts/flux/1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return catalog.NewClient(catalog.Config{BaseURL: srv.URL}), stub
}

func newCache(t *testing.T) *repository.CacheRepository {
	t.Helper()
	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "cache.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := database.NewMigrationManager(conn, nil).RunMigrations(); err != nil {
		t.Fatal(err)
	}
	return repository.NewCacheRepository(conn, time.Hour)
}

func TestLightcurveServiceSortsAndCaches(t *testing.T) {
	client, stub := newCatalog(t)
	svc := NewLightcurveService(client, newCache(t))
	ctx := context.Background()

	data, err := svc.Get(ctx, 12)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	names := []string{data.Bands[0].Band.Name, data.Bands[1].Band.Name, data.Bands[2].Band.Name}
	if names[0] != "f090" || names[1] != "f150" || names[2] != "f220" {
		t.Errorf("band order = %v", names)
	}

	if _, err := svc.Get(ctx, 12); err != nil {
		t.Fatal(err)
	}
	if n := stub.lightcurveHits.Load(); n != 1 {
		t.Errorf("catalog hit %d times, want 1", n)
	}

	if _, err := svc.Get(ctx, 99); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing source err = %v", err)
	}
	if _, err := svc.Get(ctx, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative id err = %v", err)
	}
}

func TestLightcurveServiceViews(t *testing.T) {
	client, _ := newCatalog(t)
	svc := NewLightcurveService(client, nil)
	ctx := context.Background()

	badge, err := svc.Badges(ctx, 12)
	if err != nil {
		t.Fatalf("Badges: %v", err)
	}
	// sorted bands are f090, f150, f220; the middle one is f150
	if badge.BandName != "f150" || badge.MedianFlux != 5 || badge.MaxFlux != 10 {
		t.Errorf("badge = %+v", badge)
	}

	rows, err := svc.Table(ctx, 12)
	if err != nil || len(rows) != 7 {
		t.Fatalf("Table = %d rows, %v", len(rows), err)
	}

	series, err := svc.Series(ctx, 12, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(series[0].Points) != 1 || series[0].Points[0].ID != 4 {
		t.Errorf("flagged point not hidden: %+v", series[0].Points)
	}

	var buf bytes.Buffer
	if err := svc.RenderPNG(ctx, 12, false, 400, 200, &buf); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil || img.Bounds().Dx() != 400 {
		t.Errorf("png decode: %v", err)
	}
}

func TestLightcurveDownload(t *testing.T) {
	client, _ := newCatalog(t)
	svc := NewLightcurveService(client, nil)

	file, err := svc.Download(context.Background(), 12, models.DataCSV)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if file.Filename != "source-data-12.csv" || file.ContentType != "text/csv" || string(file.Data) != "id\n1\n" {
		t.Errorf("file = %+v", file)
	}
	if _, err := svc.Download(context.Background(), 12, "xlsx"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad format err = %v", err)
	}
}

func TestSourceServiceNearbyAndSkyView(t *testing.T) {
	client, _ := newCatalog(t)
	svc := NewSourceService(client)
	ctx := context.Background()

	nearby, err := svc.Nearby(ctx, 12, 0)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(nearby) != 2 || nearby[0].ID != 31 || nearby[1].ID != 30 {
		t.Errorf("nearby = %+v", nearby)
	}

	view, err := svc.SkyView(ctx, 12)
	if err != nil {
		t.Fatalf("SkyView: %v", err)
	}
	if view.Target.Name != "SO-12" || len(view.Markers) != 3 {
		t.Errorf("view = %+v", view)
	}
}

func TestSourceServiceCone(t *testing.T) {
	client, _ := newCatalog(t)
	svc := NewSourceService(client)

	hits, err := svc.Cone(context.Background(), models.ConeFilter{RA: 10, Dec: -20})
	if err != nil {
		t.Fatalf("Cone: %v", err)
	}
	// the cone center is not a source, so every hit is kept
	if len(hits) != 3 || hits[0].ID != 12 {
		t.Errorf("hits = %+v", hits)
	}
	if _, err := svc.Cone(context.Background(), models.ConeFilter{RA: 10, Dec: 95}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad dec err = %v", err)
	}
}

func TestSourceServiceFeed(t *testing.T) {
	client, _ := newCatalog(t)
	svc := NewSourceService(client)
	ctx := context.Background()

	feed, err := svc.Feed(ctx, models.FeedFilter{Start: 20, BandName: "f090"})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if feed.Start != 20 || feed.Stop != 30 || feed.BandName != "f090" {
		t.Errorf("feed = %+v", feed)
	}

	feed, err = svc.Feed(ctx, models.FeedFilter{Start: 0, Stop: 1000})
	if err != nil || feed.Stop != MaxFeedPageSize {
		t.Errorf("clamped feed = %+v, %v", feed, err)
	}

	for _, f := range []models.FeedFilter{{Start: -1}, {Start: 5, Stop: 5}} {
		if _, err := svc.Feed(ctx, f); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Feed(%+v) err = %v", f, err)
		}
	}
}

func TestCutoutServiceCachesHitsAndMisses(t *testing.T) {
	client, stub := newCatalog(t)
	svc := NewCutoutService(client, newCache(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cutout, err := svc.FetchCutoutImage(ctx, 1, models.CutoutPNG)
		if err != nil || cutout.NotFound || string(cutout.Data) != "png" {
			t.Fatalf("hit = %+v, %v", cutout, err)
		}
		missing, err := svc.FetchCutoutImage(ctx, 2, models.CutoutPNG)
		if err != nil || !missing.NotFound {
			t.Fatalf("miss = %+v, %v", missing, err)
		}
	}
	if n := stub.cutoutHits.Load(); n != 2 {
		t.Errorf("catalog hit %d times, want 2", n)
	}

	file, err := svc.Download(ctx, 1, models.CutoutPNG)
	if err != nil || file.Filename != "cutout-1.png" {
		t.Errorf("Download = %+v, %v", file, err)
	}
	if _, err := svc.Download(ctx, 2, models.CutoutPNG); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing download err = %v", err)
	}
}

func TestCutoutServiceRetriesUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	t.Cleanup(srv.Close)

	svc := NewCutoutService(catalog.NewClient(catalog.Config{BaseURL: srv.URL}), newCache(t))
	ctx := context.Background()

	first, err := svc.FetchCutoutImage(ctx, 1, models.CutoutPNG)
	if err != nil || !first.NotFound || first.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("first = %+v, %v; want NotFound with status 503", first, err)
	}
	second, err := svc.FetchCutoutImage(ctx, 1, models.CutoutPNG)
	if err != nil || second.NotFound || string(second.Data) != "png" {
		t.Fatalf("second = %+v, %v; a 503 must not be cached", second, err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("upstream called %d times, want 2", n)
	}

	// the successful answer is cached
	if _, err := svc.FetchCutoutImage(ctx, 1, models.CutoutPNG); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("upstream called %d times after a cached hit, want 2", n)
	}
}

func TestAuthServiceLoginLink(t *testing.T) {
	auth := NewAuthService("secret", "/login", "/logout")
	token, err := auth.Issue("alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := auth.Issue("alice", -time.Hour)
	forged, _ := NewAuthService("other", "", "").Issue("alice", time.Hour)

	tests := []struct {
		name           string
		access, reload string
		want           bool
	}{
		{"both cookies", token, "r", true},
		{"no refresh", token, "", false},
		{"no access", "", "r", false},
		{"expired", expired, "r", false},
		{"wrong key", forged, "r", false},
		{"garbage", "not-a-token", "r", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := auth.LoginLink(tt.access, tt.reload)
			if link.Authenticated != tt.want {
				t.Errorf("authenticated = %v", link.Authenticated)
			}
			if tt.want && (link.Text != "Log Out" || link.Href != "/logout") {
				t.Errorf("link = %+v", link)
			}
			if !tt.want && (link.Text != "Log In" || link.Href != "/login") {
				t.Errorf("link = %+v", link)
			}
		})
	}

	if sub, err := auth.Verify(token); err != nil || sub != "alice" {
		t.Errorf("Verify = %q, %v", sub, err)
	}
}
