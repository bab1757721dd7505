package interaction

import (
	"errors"
	"testing"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

type styleCommand struct {
	series, point int
	width         float64
}

type fakeSurface struct {
	commands []styleCommand
}

func (f *fakeSurface) ApplyMarkerStyle(series, point int, width float64) {
	f.commands = append(f.commands, styleCommand{series, point, width})
}

type fakeReleaser struct {
	revoked []string
}

func (f *fakeReleaser) Revoke(token string) {
	f.revoked = append(f.revoked, token)
}

// testSeries builds two series: band 0 with 6 points, band 1 with 3 points.
// Point ids encode their position: 1000*series + point.
func testSeries() []models.PlotSeries {
	sizes := []int{6, 3}
	series := make([]models.PlotSeries, len(sizes))
	for s, n := range sizes {
		series[s] = models.PlotSeries{
			Name:     "band",
			BandName: []string{"f090", "f150"}[s],
			Color:    []string{"#1f77b4", "#ff7f0e"}[s],
		}
		for p := 0; p < n; p++ {
			series[s].Points = append(series[s].Points, models.TaggedPoint{
				ID:   int64(1000*s + p),
				Flux: float64(p),
			})
		}
	}
	return series
}

func countWidth(m *Machine, width float64) int {
	n := 0
	for s, series := range m.Series() {
		for p := range series.Points {
			if m.Width(s, p) == width {
				n++
			}
		}
	}
	return n
}

func TestHoverAndUnhover(t *testing.T) {
	surface := &fakeSurface{}
	m := NewMachine(surface, nil, testSeries())

	if !m.Hover(0, 2) {
		t.Fatal("hover had no effect")
	}
	if m.Width(0, 2) != models.StyleHover {
		t.Errorf("hover width = %v", m.Width(0, 2))
	}
	if m.Hover(0, 2) {
		t.Error("repeated hover issued a second command")
	}
	m.Unhover(0, 2)
	if m.Width(0, 2) != models.StyleBaseline {
		t.Errorf("unhover width = %v", m.Width(0, 2))
	}

	want := []styleCommand{{0, 2, 1}, {0, 2, 0}}
	if len(surface.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", surface.commands, want)
	}
	for i := range want {
		if surface.commands[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, surface.commands[i], want[i])
		}
	}
	if m.State() != Idle {
		t.Errorf("state = %v, want idle", m.State())
	}
}

func TestHoverOnlyNeverProducesSelectedStyle(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	seq := [][2]int{{0, 0}, {0, 1}, {1, 2}, {0, 5}, {1, 0}}
	for _, sp := range seq {
		m.Hover(sp[0], sp[1])
	}
	for _, sp := range seq[:3] {
		m.Unhover(sp[0], sp[1])
	}
	if n := countWidth(m, models.StyleSelected); n != 0 {
		t.Fatalf("%d points have the selected style without a click", n)
	}
}

func TestClickCommitsSelection(t *testing.T) {
	surface := &fakeSurface{}
	m := NewMachine(surface, nil, testSeries())

	m.Hover(0, 1)
	req, ok := m.Click(1, 2, models.Anchor{ClientX: 40, ClientY: 80})
	if !ok {
		t.Fatal("click rejected")
	}
	if req.PointID != 1002 || req.Format != models.CutoutPNG {
		t.Errorf("request = %+v", req)
	}
	if m.State() != Selecting {
		t.Errorf("state = %v, want selecting", m.State())
	}
	if m.Width(0, 1) != models.StyleBaseline {
		t.Error("click did not reset the hovered point")
	}
	if n := countWidth(m, models.StyleSelected); n != 1 || m.Width(1, 2) != models.StyleSelected {
		t.Fatalf("selected points = %d", n)
	}

	// style is applied synchronously, before the caller sees the request
	last := surface.commands[len(surface.commands)-1]
	if last != (styleCommand{1, 2, models.StyleSelected}) {
		t.Errorf("last command = %v", last)
	}

	tip := m.Tooltip()
	if tip == nil || tip.ImageState != models.TooltipImagePending || tip.Anchor.ClientX != 40 || tip.BandName != "f150" {
		t.Fatalf("tooltip = %+v", tip)
	}
}

func TestHoverDoesNotOverwriteSelection(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	m.Click(0, 3, models.Anchor{})

	if m.Hover(0, 3) {
		t.Error("hover restyled the committed point")
	}
	if m.Unhover(0, 3) {
		t.Error("unhover restyled the committed point")
	}
	if m.Width(0, 3) != models.StyleSelected {
		t.Errorf("selected width = %v", m.Width(0, 3))
	}

	m.Hover(1, 0)
	m.Unhover(1, 0)
	if n := countWidth(m, models.StyleSelected); n != 1 {
		t.Errorf("selected points = %d, want 1", n)
	}
}

func TestSecondClickMovesSelection(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	first, _ := m.Click(1, 2, models.Anchor{})
	second, _ := m.Click(0, 5, models.Anchor{})

	if first.Key == second.Key {
		t.Fatal("keys must differ between clicks")
	}
	if m.Width(1, 2) != models.StyleBaseline || m.Width(0, 5) != models.StyleSelected {
		t.Error("selection style did not move")
	}
	if n := countWidth(m, models.StyleSelected); n != 1 {
		t.Errorf("selected points = %d, want 1", n)
	}
}

func TestReclickSamePointIsANewSelection(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	first, _ := m.Click(0, 0, models.Anchor{})
	second, _ := m.Click(0, 0, models.Anchor{})
	if first.Key == second.Key || first.PointID != second.PointID {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestStaleFetchDoesNotReplaceNewTooltip(t *testing.T) {
	releaser := &fakeReleaser{}
	m := NewMachine(&fakeSurface{}, releaser, testSeries())

	reqA, _ := m.Click(1, 2, models.Anchor{})
	reqB, _ := m.Click(0, 5, models.Anchor{})

	imgB := &models.ImageRef{Token: "b", URL: "/blobs/b"}
	if !m.Resolve(FetchResult{Key: reqB.Key, Image: imgB}) {
		t.Fatal("current result rejected")
	}

	imgA := &models.ImageRef{Token: "a", URL: "/blobs/a"}
	if m.Resolve(FetchResult{Key: reqA.Key, Image: imgA}) {
		t.Fatal("stale result accepted")
	}

	tip := m.Tooltip()
	if tip.Image == nil || tip.Image.Token != "b" || tip.Point.ID != 5 {
		t.Fatalf("tooltip = %+v", tip)
	}
	if len(releaser.revoked) != 1 || releaser.revoked[0] != "a" {
		t.Errorf("revoked = %v, want [a]", releaser.revoked)
	}
}

func TestEscapeResetsEverything(t *testing.T) {
	releaser := &fakeReleaser{}
	m := NewMachine(&fakeSurface{}, releaser, testSeries())

	m.Hover(1, 1)
	req, _ := m.Click(0, 2, models.Anchor{})
	m.Hover(0, 4)
	m.Resolve(FetchResult{Key: req.Key, Image: &models.ImageRef{Token: "t"}})

	if !m.Escape() {
		t.Fatal("escape ignored while selecting")
	}
	if m.State() != Idle || m.Tooltip() != nil {
		t.Errorf("state = %v, tooltip = %+v", m.State(), m.Tooltip())
	}
	if _, ok := m.Selection(); ok {
		t.Error("selection survived escape")
	}
	total := 0
	for _, s := range m.Series() {
		total += len(s.Points)
	}
	if n := countWidth(m, models.StyleBaseline); n != total {
		t.Errorf("%d of %d points at baseline", n, total)
	}
	if len(releaser.revoked) != 1 || releaser.revoked[0] != "t" {
		t.Errorf("revoked = %v", releaser.revoked)
	}
	if m.Escape() {
		t.Error("escape while idle reported a change")
	}
}

func TestCloseAndViewChange(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	m.Click(0, 0, models.Anchor{})
	if !m.Close() || m.State() != Idle {
		t.Fatal("close did not clear")
	}
	m.Click(1, 1, models.Anchor{})
	if !m.ViewChange() || m.State() != Idle {
		t.Fatal("view change did not clear")
	}
	if m.ViewChange() {
		t.Error("view change while idle reported a change")
	}
}

func TestFetchFailureKeepsSelection(t *testing.T) {
	m := NewMachine(&fakeSurface{}, nil, testSeries())
	req, _ := m.Click(0, 1, models.Anchor{})

	m.Resolve(FetchResult{Key: req.Key, Err: errors.New("connection refused")})
	tip := m.Tooltip()
	if tip == nil || tip.ImageState != models.TooltipImageNotFound {
		t.Fatalf("tooltip = %+v", tip)
	}
	if m.State() != Selecting || m.Width(0, 1) != models.StyleSelected {
		t.Error("fetch failure disturbed the selection")
	}

	req, _ = m.Click(0, 2, models.Anchor{})
	m.Resolve(FetchResult{Key: req.Key, NotFound: true})
	if m.Tooltip().ImageState != models.TooltipImageNotFound {
		t.Error("404 not rendered as not found")
	}
}

func TestResolveAfterCloseReleasesImage(t *testing.T) {
	releaser := &fakeReleaser{}
	m := NewMachine(&fakeSurface{}, releaser, testSeries())
	req, _ := m.Click(0, 1, models.Anchor{})
	m.Close()

	if m.Resolve(FetchResult{Key: req.Key, Image: &models.ImageRef{Token: "late"}}) {
		t.Fatal("result applied after close")
	}
	if len(releaser.revoked) != 1 || releaser.revoked[0] != "late" {
		t.Errorf("revoked = %v", releaser.revoked)
	}
}

func TestOutOfRangeEventsAreIgnored(t *testing.T) {
	surface := &fakeSurface{}
	m := NewMachine(surface, nil, testSeries())
	m.Hover(5, 0)
	m.Unhover(0, 99)
	if _, ok := m.Click(-1, 0, models.Anchor{}); ok {
		t.Error("out of range click accepted")
	}
	if len(surface.commands) != 0 {
		t.Errorf("commands = %v", surface.commands)
	}
}

func TestResetDropsSelectionWithoutCommands(t *testing.T) {
	surface := &fakeSurface{}
	releaser := &fakeReleaser{}
	m := NewMachine(surface, releaser, testSeries())
	req, _ := m.Click(0, 1, models.Anchor{})
	m.Resolve(FetchResult{Key: req.Key, Image: &models.ImageRef{Token: "x"}})
	before := len(surface.commands)

	m.Reset(testSeries())
	if len(surface.commands) != before {
		t.Error("reset issued style commands")
	}
	if m.State() != Idle || m.Tooltip() != nil || len(releaser.revoked) != 1 {
		t.Errorf("state = %v, revoked = %v", m.State(), releaser.revoked)
	}
}
