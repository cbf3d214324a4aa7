package board

// Scheduler defers work to the next frame tick.
type Scheduler interface {
	Request(fn func())
}

// Frames is the frame-tick suspension point. Callbacks requested before a
// Tick run during it; callbacks requested while ticking wait for the next
// one. The owner decides what drives Tick: a ticker at display rate or a
// test stepping frames by hand.
type Frames struct {
	pending []func()
}

func (f *Frames) Request(fn func()) {
	f.pending = append(f.pending, fn)
}

func (f *Frames) Tick() int {
	batch := f.pending
	f.pending = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (f *Frames) Pending() int { return len(f.pending) }
