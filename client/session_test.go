package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/config"
)

var errClosed = errors.New("transport closed")

type fakeTransport struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 64),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) {
	select {
	case b := <-f.in:
		return 1, b, nil
	case <-f.closed:
		return 0, nil, errClosed
	}
}

func (f *fakeTransport) WriteMessage(_ int, b []byte) error {
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	f.out <- b
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) push(m config.Msg) { f.in <- config.MustEncode(m) }

func (f *fakeTransport) next(t *testing.T) config.Msg {
	t.Helper()
	select {
	case b := <-f.out:
		m, err := config.Decode(b)
		require.NoError(t, err)
		return m
	case <-time.After(time.Second):
		require.FailNow(t, "nothing written")
		return nil
	}
}

type rig struct {
	sess   *Session
	conn   *fakeTransport
	tick   chan time.Time
	runErr chan error
	cancel context.CancelFunc

	mu       sync.Mutex
	statuses []string
}

func startSession(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		sess:   NewSession(zap.NewNop(), 100, 60, 1),
		conn:   newFakeTransport(),
		tick:   make(chan time.Time),
		runErr: make(chan error, 1),
	}
	r.sess.OnStatus = func(s string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.statuses = append(r.statuses, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go func() { r.runErr <- r.sess.Run(ctx, r.conn, r.tick) }()
	t.Cleanup(cancel)
	return r
}

func (r *rig) frame() { r.tick <- time.Now() }

func (r *rig) view(t *testing.T) View {
	t.Helper()
	v, err := r.sess.View()
	require.NoError(t, err)
	return v
}

func (r *rig) hello(t *testing.T, name string) {
	t.Helper()
	r.conn.push(config.Hello{Name: name})
	require.Eventually(t, func() bool { return r.view(t).Self == name }, time.Second, 5*time.Millisecond)
}

func TestSession_Presence(t *testing.T) {
	req := require.New(t)
	r := startSession(t)

	r.hello(t, "ann")
	r.conn.push(config.PeerJoin{Name: "bob"})
	r.conn.push(config.PeerJoin{Name: "cat"})
	r.conn.push(config.PeerLeave{Name: "cat"})

	req.Eventually(func() bool {
		v := r.view(t)
		return len(v.Names) == 2 && v.Names[1] == "bob"
	}, time.Second, 5*time.Millisecond)
	req.Equal(StatusConnected, r.view(t).Status)
}

func TestSession_RemoteStrokes(t *testing.T) {
	req := require.New(t)
	r := startSession(t)
	r.hello(t, "ann")

	// Given bob's stroke arrives in two pieces
	r.conn.push(config.Stroke{ID: "s1", Color: "#000", Size: 6, Points: []config.Point{{0, 0}}, Name: "bob"})
	r.conn.push(config.Stroke{ID: "s1", Points: []config.Point{{0, 0}, {50, 30}}, Name: "bob"})
	r.conn.push(config.End{ID: "s1", Name: "bob"})
	r.conn.push(config.Cursor{X: 1, Y: 2, Name: "bob"})

	// Then it is stored once and painted
	req.Eventually(func() bool {
		var painted bool
		_ = r.sess.Do(func() {
			painted = r.sess.Store.Len("s1") == 2 && r.sess.Surface.At(25, 15).A == 0xff
		})
		return painted
	}, time.Second, 5*time.Millisecond)

	// When anyone clears
	r.conn.push(config.Clear{Name: "cat"})

	req.Eventually(func() bool {
		var empty bool
		_ = r.sess.Do(func() {
			empty = r.sess.Store.Count() == 0 && r.sess.Surface.At(25, 15).A == 0
		})
		return empty
	}, time.Second, 5*time.Millisecond)
}

func TestSession_LocalDrawing(t *testing.T) {
	req := require.New(t)
	r := startSession(t)
	r.hello(t, "ann")

	req.NoError(r.sess.PointerDown(config.Point{10, 10}))
	req.NoError(r.sess.PointerMove(config.Point{20, 10}))
	req.NoError(r.sess.PointerMove(config.Point{30, 10}))
	r.frame()

	first, ok := r.conn.next(t).(config.Stroke)
	req.True(ok)
	req.Equal([]config.Point{{10, 10}, {20, 10}, {30, 10}}, first.Points)
	req.Equal(config.ModePen, first.Mode)

	req.NoError(r.sess.PointerMove(config.Point{40, 10}))
	req.NoError(r.sess.PointerUp())

	last, ok := r.conn.next(t).(config.Stroke)
	req.True(ok)
	req.Equal([]config.Point{{30, 10}, {40, 10}}, last.Points)
	req.Equal(config.End{ID: first.ID}, r.conn.next(t))
}

func TestSession_UndoIsLocal(t *testing.T) {
	req := require.New(t)
	r := startSession(t)
	r.hello(t, "ann")
	r.conn.push(config.Stroke{ID: "b1", Points: []config.Point{{0, 50}, {100, 50}}, Name: "bob"})

	req.NoError(r.sess.PointerDown(config.Point{10, 10}))
	req.NoError(r.sess.PointerMove(config.Point{90, 10}))
	req.NoError(r.sess.PointerUp())
	r.conn.next(t) // stroke
	r.conn.next(t) // end
	req.Eventually(func() bool { return r.view(t).Strokes == 2 }, time.Second, 5*time.Millisecond)

	req.NoError(r.sess.Undo())

	req.Equal(1, r.view(t).Strokes)
	var ownGone, bobKept bool
	req.NoError(r.sess.Do(func() {
		ownGone = r.sess.Surface.At(50, 10).A == 0
		bobKept = r.sess.Surface.At(50, 50).A == 0xff
	}))
	req.True(ownGone)
	req.True(bobKept)
	select {
	case b := <-r.conn.out:
		req.Failf("undo was sent", "%s", b)
	default:
	}
}

func TestSession_ClearIsBroadcast(t *testing.T) {
	req := require.New(t)
	r := startSession(t)
	r.hello(t, "ann")
	r.conn.push(config.Stroke{ID: "b1", Points: []config.Point{{0, 0}, {10, 10}}, Name: "bob"})
	req.Eventually(func() bool { return r.view(t).Strokes == 1 }, time.Second, 5*time.Millisecond)

	req.NoError(r.sess.Clear())

	req.Equal(config.Clear{}, r.conn.next(t))
	req.Zero(r.view(t).Strokes)
}

func TestSession_ResizeBatchesToOneRedraw(t *testing.T) {
	req := require.New(t)
	r := startSession(t)

	req.NoError(r.sess.Resize(200, 100, 1))
	req.NoError(r.sess.Resize(300, 150, 2))
	var pending int
	req.NoError(r.sess.Do(func() { pending = r.sess.Frames.Pending() }))
	req.Equal(1, pending)
	r.frame()

	var (
		w, h float64
		dx   int
	)
	req.NoError(r.sess.Do(func() {
		w, h = r.sess.Surface.Size()
		dx = r.sess.Surface.Image().Bounds().Dx()
	}))
	req.Equal(300.0, w)
	req.Equal(150.0, h)
	req.Equal(600, dx)
}

func TestSession_Hover(t *testing.T) {
	req := require.New(t)
	r := startSession(t)

	req.NoError(r.sess.Hover(config.Point{1, 1}))
	req.NoError(r.sess.Hover(config.Point{7, 8}))
	r.frame()

	req.Equal(config.Cursor{X: 7, Y: 8}, r.conn.next(t))
}

func TestSession_Disconnect(t *testing.T) {
	req := require.New(t)
	r := startSession(t)
	r.hello(t, "ann")

	// When the transport dies
	req.NoError(r.conn.Close())

	// Then Run returns and the session reports it
	select {
	case err := <-r.runErr:
		req.ErrorIs(err, errClosed)
	case <-time.After(time.Second):
		req.FailNow("run did not return")
	}
	req.ErrorIs(r.sess.PointerDown(config.Point{1, 1}), ErrStopped)
	req.Empty(r.sess.Presence.Names())

	r.mu.Lock()
	defer r.mu.Unlock()
	req.Equal([]string{StatusConnected, StatusDisconnected}, r.statuses)
}

func TestSession_Snapshot(t *testing.T) {
	req := require.New(t)
	r := startSession(t)

	png, err := r.sess.Snapshot()
	req.NoError(err)
	req.Equal([]byte("\x89PNG"), png[:4])

	pdf, err := r.sess.ExportPDF()
	req.NoError(err)
	req.Equal([]byte("%PDF"), pdf[:4])
}
