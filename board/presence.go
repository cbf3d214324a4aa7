package board

import (
	"slices"

	"github.com/samber/lo"
)

// Presence is the set of display names currently on the board. Two
// accounts that derive the same name show up once.
type Presence struct {
	self  string
	names map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{names: make(map[string]struct{})}
}

func (p *Presence) Hello(name string) {
	p.self = name
	p.Join(name)
}

func (p *Presence) Join(name string) {
	if name == "" {
		return
	}
	p.names[name] = struct{}{}
}

func (p *Presence) Leave(name string) {
	delete(p.names, name)
}

// Reset forgets everyone, self included, after the connection drops.
func (p *Presence) Reset() {
	p.self = ""
	clear(p.names)
}

func (p *Presence) Self() string { return p.self }

func (p *Presence) Has(name string) bool {
	_, ok := p.names[name]
	return ok
}

func (p *Presence) Names() []string {
	names := lo.Keys(p.names)
	slices.Sort(names)
	return names
}
