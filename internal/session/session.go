package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/events"
	"github.com/jengzang/lightcurve-viewer-go/internal/host"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/plot"
)

const (
	writeTimeout = 5 * time.Second
	inboxSize    = 64
	outboxSize   = 256
)

// Upgrader accepts same-origin websocket connections
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(r.Host), strings.TrimSpace(u.Host))
	},
}

// Loader returns the light curve of a source
type Loader interface {
	Get(ctx context.Context, sourceID int64) (*models.LightcurveData, error)
}

// Options configures a plot session
type Options struct {
	SourceID        int64
	HideFlagged     bool
	Loader          Loader
	Fetcher         host.CutoutFetcher
	Blobs           *blobstore.Store
	CutoutURLPrefix string
	FetchTimeout    time.Duration
}

type tooltipSig struct {
	open   bool
	key    models.SelectionKey
	state  models.TooltipImageState
	format models.CutoutFormat
}

// Session is one open light-curve plot. A single goroutine (Run) owns all
// plot state; browser events and fetch results are queued onto it.
type Session struct {
	ID string

	opts        Options
	data        *models.LightcurveData
	memo        plot.Memo
	hideFlagged bool
	host        *host.Host
	lastTooltip tooltipSig

	in   chan Event
	out  chan Message
	done chan struct{}
}

// New creates a session. Nothing happens until Run.
func New(opts Options) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		opts:        opts,
		hideFlagged: opts.HideFlagged,
		in:          make(chan Event, inboxSize),
		out:         make(chan Message, outboxSize),
		done:        make(chan struct{}),
	}
	s.host = host.New(host.Options{
		NewSurface:      func() host.Surface { return &wsSurface{send: s.send} },
		Fetcher:         opts.Fetcher,
		Blobs:           opts.Blobs,
		Owner:           s.ID,
		Bus:             events.NewBus(),
		CutoutURLPrefix: opts.CutoutURLPrefix,
		FetchTimeout:    opts.FetchTimeout,
	})
	return s
}

// Messages delivers the commands for the browser
func (s *Session) Messages() <-chan Message {
	return s.out
}

// Done is closed once Run has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Dispatch queues a browser event. It reports false once the session ended.
func (s *Session) Dispatch(ev Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.in <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Run loads the light curve, mounts the plot and processes events until ctx
// is cancelled
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	data, err := s.opts.Loader.Get(ctx, s.opts.SourceID)
	if err != nil {
		log.Printf("[Session %s] load source %d: %v", s.ID, s.opts.SourceID, err)
		s.send(Message{Type: TypeError, Error: err.Error()})
		return err
	}
	s.data = data

	if err := s.host.Mount(s.memo.Get(data, s.hideFlagged)); err != nil {
		s.send(Message{Type: TypeError, Error: err.Error()})
		return err
	}
	defer s.host.Unmount()
	log.Printf("[Session %s] opened for source %d", s.ID, s.opts.SourceID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Session %s] closed", s.ID)
			return nil
		case ev := <-s.in:
			s.handle(ev)
		case res := <-s.host.Results():
			s.host.Resolve(res)
		}
		s.syncTooltip()
	}
}

// ServeConn runs the session over a websocket connection and returns when
// either side goes away
func (s *Session) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				log.Printf("[Session %s] malformed event: %v", s.ID, err)
				continue
			}
			if !s.Dispatch(ev) {
				return
			}
		}
	}()

	written := make(chan struct{})
	go func() {
		defer close(written)
		for {
			select {
			case msg := <-s.out:
				if err := writeMessage(conn, msg); err != nil {
					cancel()
					return
				}
			case <-s.done:
				s.flush(conn)
				return
			}
		}
	}()

	err := s.Run(ctx)
	<-written
	return err
}

func (s *Session) handle(ev Event) {
	switch ev.Type {
	case EventHover:
		s.host.Hover(ev.Series, ev.Point)
	case EventUnhover:
		s.host.Unhover(ev.Series, ev.Point)
	case EventClick:
		s.host.Click(ev.Series, ev.Point, ev.ClientX, ev.ClientY)
	case EventRelayout:
		s.host.ViewChange()
	case EventKeyDown:
		s.host.KeyDown(ev.Key)
	case EventClose:
		s.host.CloseTooltip()
	case EventFormat:
		if err := s.host.SelectFormat(models.CutoutFormat(ev.Format)); err != nil {
			s.send(Message{Type: TypeError, Error: err.Error()})
		}
	case EventDownload:
		action, err := s.host.Download()
		if err != nil {
			log.Printf("[Session %s] download: %v", s.ID, err)
			return
		}
		s.send(Message{Type: TypeDownload, Download: &action})
	case EventToggleFlagged:
		if ev.HideFlagged == s.hideFlagged {
			return
		}
		s.hideFlagged = ev.HideFlagged
		if err := s.host.Update(s.memo.Get(s.data, s.hideFlagged)); err != nil {
			log.Printf("[Session %s] re-render: %v", s.ID, err)
		}
	default:
		log.Printf("[Session %s] unknown event %q", s.ID, ev.Type)
	}
}

// syncTooltip sends the tooltip whenever what the browser shows is out of date
func (s *Session) syncTooltip() {
	view := s.host.Tooltip()
	sig := tooltipSig{}
	if view != nil {
		sig = tooltipSig{open: true, key: view.Key, state: view.ImageState, format: view.SelectedFormat}
	}
	if sig == s.lastTooltip {
		return
	}
	s.lastTooltip = sig
	s.send(Message{Type: TypeTooltip, Tooltip: view})
}

// send never blocks the loop; a client that stopped reading loses commands
func (s *Session) send(msg Message) {
	select {
	case s.out <- msg:
	default:
		log.Printf("[Session %s] outbox full, dropping %s", s.ID, msg.Type)
	}
}

// flush writes whatever is still queued once the loop has stopped
func (s *Session) flush(conn *websocket.Conn) {
	for {
		select {
		case msg := <-s.out:
			if err := writeMessage(conn, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
