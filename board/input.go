package board

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/Tk21111/journal_board/config"
)

// MinMoveSq is the squared logical distance below which a pointer move is
// treated as noise.
const MinMoveSq = 0.8

// Painter is the part of Surface that input needs for live feedback.
type Painter interface {
	DrawSegment(style Style, a, b config.Point)
}

// Input turns pointer samples into a local stroke and throttled stroke
// messages, at most one per frame.
type Input struct {
	Store  *Store
	Paint  Painter
	Frames Scheduler
	// Send hands a message to the transport. It must not block.
	Send func(config.Msg)
	// Author is stamped on local strokes so undo can find them.
	Author func() string
	Now    func() time.Time

	Style Style

	active    string
	style     Style
	sent      int
	scheduled bool
}

// Active is the id of the stroke being drawn, or "".
func (in *Input) Active() string { return in.active }

func (in *Input) Down(p config.Point) {
	if in.active != "" {
		in.Cancel()
	}

	in.active = in.newID()
	in.style = in.Style.normalized()
	in.sent = 0
	in.Store.Begin(in.active, in.author(), in.style, p)
	in.schedule()
}

func (in *Input) Move(p config.Point) {
	if in.active == "" {
		return
	}
	last, ok := in.Store.Last(in.active)
	if !ok {
		return
	}
	dx, dy := p.X()-last.X(), p.Y()-last.Y()
	if dx*dx+dy*dy < MinMoveSq {
		return
	}

	in.Store.Append(in.active, p)
	if in.Paint != nil {
		in.Paint.DrawSegment(in.style, last, p)
	}
	in.schedule()
}

// Up sends whatever is unsent, then the end marker.
func (in *Input) Up() {
	if in.active == "" {
		return
	}
	in.flush()
	in.emit(config.End{ID: in.active})
	in.Store.ApplyEnd(in.active)

	in.active = ""
	in.sent = 0
}

// Cancel behaves like Up: the stroke so far is kept and announced.
func (in *Input) Cancel() { in.Up() }

func (in *Input) schedule() {
	if in.scheduled {
		return
	}
	in.scheduled = true
	in.Frames.Request(func() {
		in.scheduled = false
		in.flush()
	})
}

// flush sends the points added since the last flush, led by the last
// point already sent so the receiver can join the pieces.
func (in *Input) flush() {
	if in.active == "" {
		return
	}
	n := in.Store.Len(in.active)
	from := max(in.sent-1, 0)
	if n-from < 2 {
		return
	}

	pts := in.Store.Tail(in.active, from)
	in.sent = n
	in.emit(config.Stroke{
		ID:     in.active,
		Mode:   in.style.Mode,
		Color:  in.style.Color,
		Size:   in.style.Size,
		Points: pts,
	})
}

func (in *Input) emit(m config.Msg) {
	if in.Send != nil {
		in.Send(m)
	}
}

func (in *Input) author() string {
	if in.Author == nil {
		return ""
	}
	return in.Author()
}

func (in *Input) newID() string {
	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	return fmt.Sprintf("%d-%s", now().UnixMilli(), strconv.FormatUint(rand.Uint64(), 16))
}
