package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// ErrNotFound is returned when the catalog answers 404
var ErrNotFound = errors.New("catalog: not found")

// ServiceError is any other failure talking to the catalog: a transport
// error or a non-2xx status.
type ServiceError struct {
	Op         string
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Config collects catalog API options
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client wraps the catalog REST endpoints
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a catalog client with normalized defaults
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = "lightcurve-viewer/1.0"
	}
	return &Client{
		baseURL:   base,
		userAgent: agent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the normalized catalog base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchLightcurve retrieves every band of a source's light curve. Bands come
// back in server order; the caller sorts them.
func (c *Client) FetchLightcurve(ctx context.Context, sourceID int64) (*models.LightcurveData, error) {
	var data models.LightcurveData
	if err := c.getJSON(ctx, "fetch lightcurve", LightcurvePath(sourceID), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FetchLightcurveRaw returns the undecoded light-curve payload for caching
func (c *Client) FetchLightcurveRaw(ctx context.Context, sourceID int64) ([]byte, error) {
	resp, err := c.get(ctx, "fetch lightcurve", LightcurvePath(sourceID), nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Op: "fetch lightcurve", Err: err}
	}
	return body, nil
}

// FetchSourceSummary retrieves a source with its bands and measurement counts
func (c *Client) FetchSourceSummary(ctx context.Context, sourceID int64) (*models.SourceSummary, error) {
	var summary models.SourceSummary
	path := fmt.Sprintf("/sources/%d/summary", sourceID)
	if err := c.getJSON(ctx, "fetch source summary", path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListSources retrieves every source
func (c *Client) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	if err := c.getJSON(ctx, "list sources", "/sources/", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// ConeSearch retrieves the sources within radius degrees of (ra, dec)
func (c *Client) ConeSearch(ctx context.Context, ra, dec, radius float64) ([]models.Source, error) {
	query := url.Values{}
	query.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	query.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))
	query.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))

	var sources []models.Source
	if err := c.getJSON(ctx, "cone search", "/sources/cone/", query, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// FetchFeed retrieves one page of the sources feed
func (c *Client) FetchFeed(ctx context.Context, start, stop int, bandName string) (*models.SourcesFeed, error) {
	query := url.Values{}
	query.Set("start", strconv.Itoa(start))
	query.Set("stop", strconv.Itoa(stop))
	if bandName != "" {
		query.Set("band_name", bandName)
	}

	var feed models.SourcesFeed
	if err := c.getJSON(ctx, "fetch feed", "/sources/feed", query, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// FetchCutoutImage retrieves a cutout. A missing cutout is not an error: any
// non-2xx answer yields Cutout{NotFound: true} with StatusCode set, so callers
// can tell a real miss from an upstream failure. Only transport failures
// return an error.
func (c *Client) FetchCutoutImage(ctx context.Context, pointID int64, format models.CutoutFormat) (models.Cutout, error) {
	cutout := models.Cutout{PointID: pointID, Format: format}

	req, err := c.newRequest(ctx, CutoutPath(pointID), cutoutQuery(format), "*/*")
	if err != nil {
		return cutout, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cutout, &ServiceError{Op: "fetch cutout", Err: err}
	}
	defer resp.Body.Close()
	cutout.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		cutout.NotFound = true
		return cutout, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return cutout, &ServiceError{Op: "fetch cutout", Err: err}
	}
	cutout.Data = data
	cutout.ContentType = resp.Header.Get("Content-Type")
	if cutout.ContentType == "" {
		cutout.ContentType = ContentTypeFor(string(format))
	}
	return cutout, nil
}

// DownloadFile streams the resource at path to w and returns the content type.
// Nothing is written to w when the catalog answers with an error status.
func (c *Client) DownloadFile(ctx context.Context, path string, query url.Values, w io.Writer) (string, error) {
	resp, err := c.get(ctx, "download", path, query, "*/*")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("copy download body: %w", err)
	}
	return resp.Header.Get("Content-Type"), nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.get(ctx, op, path, query, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServiceError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// get performs a request and maps error statuses. The caller closes the body.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, accept string) (*http.Response, error) {
	req, err := c.newRequest(ctx, path, query, accept)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &ServiceError{Op: op, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values, accept string) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func cutoutQuery(format models.CutoutFormat) url.Values {
	if format == "" {
		return nil
	}
	return url.Values{"ext": []string{string(format)}}
}
