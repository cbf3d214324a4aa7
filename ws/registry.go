package ws

// Peer is one connected participant as the hub sees it.
type Peer interface {
	Name() string
	// Send queues b without blocking and reports whether it was taken.
	Send(b []byte) bool
	// Close releases the outbound queue. The hub calls it exactly once,
	// after removing the peer from the registry.
	Close()
}

// Registry is the live connection set. It is owned by the hub's dispatch
// loop and is not safe for concurrent use.
type Registry interface {
	Add(p Peer)
	Remove(p Peer) bool
	Each(fn func(Peer))
	Len() int
}

type setRegistry struct {
	peers map[Peer]struct{}
}

func NewRegistry() Registry {
	return &setRegistry{peers: make(map[Peer]struct{})}
}

func (r *setRegistry) Add(p Peer) { r.peers[p] = struct{}{} }

func (r *setRegistry) Remove(p Peer) bool {
	if _, ok := r.peers[p]; !ok {
		return false
	}
	delete(r.peers, p)
	return true
}

func (r *setRegistry) Each(fn func(Peer)) {
	for p := range r.peers {
		fn(p)
	}
}

func (r *setRegistry) Len() int { return len(r.peers) }
