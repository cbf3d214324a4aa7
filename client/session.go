// Package client runs one participant's view of the live board: it owns
// the board state on a single loop goroutine and talks to the hub over a
// websocket.
package client

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/board"
	"github.com/Tk21111/journal_board/config"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"

	FrameInterval = time.Second / 60
	outBuffer     = 256
)

var ErrStopped = errors.New("session stopped")

// Transport is the slice of *websocket.Conn the session uses.
type Transport interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Session struct {
	log *zap.Logger

	Store    *board.Store
	Surface  *board.Surface
	Presence *board.Presence
	Frames   *board.Frames
	Input    *board.Input

	// OnStatus, if set, sees every connection status change. It runs on
	// the session goroutine.
	OnStatus func(status string)

	status  string
	cursors map[string]config.Point

	out   chan []byte
	calls chan func()
	done  chan struct{}

	resizeW, resizeH, resizeDPR float64
	resizePending               bool

	hover        config.Point
	hoverPending bool
}

func NewSession(log *zap.Logger, w, h, dpr float64) *Session {
	s := &Session{
		log:      log.Named("session"),
		Store:    board.NewStore(),
		Surface:  board.NewSurface(w, h, dpr),
		Presence: board.NewPresence(),
		Frames:   &board.Frames{},
		status:   StatusDisconnected,
		cursors:  make(map[string]config.Point),
		calls:    make(chan func()),
		done:     make(chan struct{}),
	}
	s.Input = &board.Input{
		Store:  s.Store,
		Paint:  s.Surface,
		Frames: s.Frames,
		Send:   s.send,
		Author: s.Presence.Self,
		Style:  board.Style{Mode: config.ModePen, Color: board.DefaultColor, Size: board.DefaultSize},
	}
	return s
}

// Run owns the board until ctx ends or the transport fails. Frame ticks
// come from tick; pass a time.Ticker channel in production.
func (s *Session) Run(ctx context.Context, conn Transport, tick <-chan time.Time) error {
	defer close(s.done)

	inbound := make(chan []byte, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan []byte, outBuffer)
	s.out = out
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for b := range out {
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				return
			}
		}
	}()

	s.setStatus(StatusConnected)
	defer func() {
		close(out)
		s.out = nil
		conn.Close()
		<-writerDone
		s.Presence.Reset()
		s.setStatus(StatusDisconnected)
	}()

	for {
		select {
		case raw := <-inbound:
			s.handle(raw)
		case fn := <-s.calls:
			fn()
		case <-tick:
			s.Frames.Tick()
		case err := <-readErr:
			s.log.Info("connection lost", zap.Error(err))
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) setStatus(status string) {
	s.status = status
	if s.OnStatus != nil {
		s.OnStatus(status)
	}
}

// Do runs fn on the session goroutine and waits for it.
func (s *Session) Do(fn func()) error {
	ran := make(chan struct{})
	select {
	case s.calls <- func() { fn(); close(ran) }:
	case <-s.done:
		return ErrStopped
	}
	<-ran
	return nil
}

func (s *Session) handle(raw []byte) {
	msg, err := config.Decode(raw)
	if err != nil {
		s.log.Debug("ignored frame", zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case config.Hello:
		s.Presence.Hello(m.Name)
	case config.PeerJoin:
		s.Presence.Join(m.Name)
	case config.PeerLeave:
		s.Presence.Leave(m.Name)
		delete(s.cursors, m.Name)
	case config.Stroke:
		pts := s.Store.ApplyStroke(m)
		if st, ok := s.Store.Get(m.ID); ok {
			s.Surface.DrawPolyline(st.Style, pts)
		}
	case config.End:
		s.Store.ApplyEnd(m.ID)
	case config.Clear:
		s.Store.ApplyClear()
		s.Surface.Clear()
	case config.Cursor:
		s.cursors[m.Name] = config.Point{m.X, m.Y}
	default:
		s.log.Debug("unhandled message", zap.String("kind", string(msg.Kind())))
	}
}

// send queues m for the writer. While disconnected, or when the writer is
// behind, the message is dropped.
func (s *Session) send(m config.Msg) {
	if s.out == nil {
		return
	}
	b, err := config.Encode(m)
	if err != nil {
		s.log.Warn("encode", zap.Error(err))
		return
	}
	select {
	case s.out <- b:
	default:
		s.log.Debug("outbound full, dropped", zap.String("kind", string(m.Kind())))
	}
}

func (s *Session) PointerDown(p config.Point) error { return s.Do(func() { s.Input.Down(p) }) }

func (s *Session) PointerMove(p config.Point) error { return s.Do(func() { s.Input.Move(p) }) }

func (s *Session) PointerUp() error { return s.Do(s.Input.Up) }

func (s *Session) PointerCancel() error { return s.Do(s.Input.Cancel) }

func (s *Session) SetStyle(style board.Style) error {
	return s.Do(func() { s.Input.Style = style })
}

// Hover shares the pointer position, at most once per frame.
func (s *Session) Hover(p config.Point) error {
	return s.Do(func() {
		s.hover = p
		if s.hoverPending {
			return
		}
		s.hoverPending = true
		s.Frames.Request(func() {
			s.hoverPending = false
			s.send(config.Cursor{X: s.hover.X(), Y: s.hover.Y()})
		})
	})
}

// Undo removes this participant's newest stroke from the local board only.
func (s *Session) Undo() error {
	return s.Do(func() {
		if s.Store.UndoLastOwn(s.Presence.Self()) {
			s.Surface.Redraw(s.Store.All())
		}
	})
}

// Clear wipes the board here and for everyone.
func (s *Session) Clear() error {
	return s.Do(func() {
		s.send(config.Clear{})
		s.Store.ApplyClear()
		s.Surface.Clear()
	})
}

// Resize batches size changes to one redraw per frame.
func (s *Session) Resize(w, h, dpr float64) error {
	return s.Do(func() {
		s.resizeW, s.resizeH, s.resizeDPR = w, h, dpr
		if s.resizePending {
			return
		}
		s.resizePending = true
		s.Frames.Request(func() {
			s.resizePending = false
			s.Surface.Resize(s.resizeW, s.resizeH, s.resizeDPR)
			s.Surface.Redraw(s.Store.All())
		})
	})
}

// Snapshot encodes the current raster as PNG.
func (s *Session) Snapshot() ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	if derr := s.Do(func() { err = s.Surface.EncodePNG(&buf) }); derr != nil {
		return nil, derr
	}
	return buf.Bytes(), err
}

// ExportPDF renders the strokes as a vector page.
func (s *Session) ExportPDF() ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	derr := s.Do(func() {
		w, h := s.Surface.Size()
		err = board.ExportPDF(&buf, w, h, s.Store.All())
	})
	if derr != nil {
		return nil, derr
	}
	return buf.Bytes(), err
}

type View struct {
	Status  string
	Self    string
	Names   []string
	Strokes int
}

func (s *Session) View() (View, error) {
	var v View
	err := s.Do(func() {
		v = View{
			Status:  s.status,
			Self:    s.Presence.Self(),
			Names:   s.Presence.Names(),
			Strokes: s.Store.Count(),
		}
	})
	return v, err
}
