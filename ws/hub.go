package ws

import (
	"context"

	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/middleware"
)

type eventType int

const (
	evJoin eventType = iota
	evLeave
	evInbound
)

type event struct {
	typ  eventType
	peer Peer
	raw  []byte
}

// Hub relays drawing messages between the participants of the one board
// this process serves. Every connection event and every inbound frame goes
// through a single queue drained by Run, so frames from one sender reach
// the others in the order the hub received them.
type Hub struct {
	log    *zap.Logger
	reg    Registry
	events chan event
	done   chan struct{}
}

func NewHub(log *zap.Logger, reg Registry) *Hub {
	return &Hub{
		log:    log.Named("hub"),
		reg:    reg,
		events: make(chan event, 4096),
		done:   make(chan struct{}),
	}
}

// Run is the dispatch loop. It returns when ctx is cancelled, closing every
// peer still registered.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		h.reg.Each(func(p Peer) { p.Close() })
	}()

	for {
		select {
		case ev := <-h.events:
			switch ev.typ {
			case evJoin:
				h.join(ev.peer)
			case evLeave:
				h.leave(ev.peer)
			case evInbound:
				h.relay(ev.peer, ev.raw)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Join queues p for registration and reports false if the hub is stopped.
func (h *Hub) Join(p Peer) bool { return h.post(event{typ: evJoin, peer: p}) }

func (h *Hub) Leave(p Peer) { h.post(event{typ: evLeave, peer: p}) }

func (h *Hub) Inbound(p Peer, raw []byte) { h.post(event{typ: evInbound, peer: p, raw: raw}) }

func (h *Hub) post(ev event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) join(p Peer) {
	name := p.Name()
	if !p.Send(config.MustEncode(config.Hello{Name: name})) {
		h.log.Debug("hello not delivered", zap.String("peer", name))
	}
	h.reg.Add(p)

	n := h.broadcast(config.MustEncode(config.PeerJoin{Name: name}), p)
	h.log.Info("peer joined",
		zap.String("peer", name),
		zap.Int("notified", n),
		zap.Int("connected", h.reg.Len()),
	)
}

func (h *Hub) leave(p Peer) {
	if !h.reg.Remove(p) {
		return
	}
	p.Close()

	name := p.Name()
	n := h.broadcast(config.MustEncode(config.PeerLeave{Name: name}), nil)
	h.log.Info("peer left",
		zap.String("peer", name),
		zap.Int("notified", n),
		zap.Int("connected", h.reg.Len()),
	)
}

// relay stamps a frame with its sender's name and hands it to every other
// peer. Frames that are not relayable are dropped without telling anyone.
func (h *Hub) relay(from Peer, raw []byte) int {
	out, kind, err := middleware.StampSender(raw, from.Name())
	if err != nil {
		h.log.Debug("dropped frame",
			zap.String("peer", from.Name()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return 0
	}
	return h.broadcast(out, from)
}

// broadcast returns how many peers accepted b. A peer that cannot take it
// is skipped; there is no retry and no buffering on the hub side.
func (h *Hub) broadcast(b []byte, except Peer) int {
	delivered := 0
	h.reg.Each(func(p Peer) {
		if p == except {
			return
		}
		if p.Send(b) {
			delivered++
			return
		}
		h.log.Debug("send skipped", zap.String("peer", p.Name()))
	})
	return delivered
}
