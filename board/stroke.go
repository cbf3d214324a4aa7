// Package board is the client side of the live drawing board: the stroke
// store rebuilt from the message stream, the raster surface it is painted
// on, and the pointer input that turns samples into stroke messages.
//
// Nothing here is safe for concurrent use. A board lives on the single
// goroutine that owns its session.
package board

import (
	"iter"
	"math"
	"slices"

	"github.com/Tk21111/journal_board/config"
)

type Style struct {
	Mode  config.Mode
	Color string
	Size  float64
}

func (s Style) normalized() Style {
	s.Mode = config.NormalizeMode(s.Mode)
	if s.Color == "" {
		s.Color = DefaultColor
	}
	if s.Size <= 0 || math.IsNaN(s.Size) {
		s.Size = DefaultSize
	}
	return s
}

// Stroke is one pointer-down to pointer-up line. Its points are owned by
// the Store and only ever grow.
type Stroke struct {
	ID     string
	Author string
	Style

	points []config.Point
}

func (s *Stroke) Len() int { return len(s.points) }

func (s *Stroke) Points() iter.Seq2[int, config.Point] {
	return func(yield func(int, config.Point) bool) {
		for i, p := range s.points {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Segments yields consecutive point pairs. A stroke with fewer than two
// points yields nothing.
func (s *Stroke) Segments() iter.Seq2[config.Point, config.Point] {
	return func(yield func(config.Point, config.Point) bool) {
		for i := 1; i < len(s.points); i++ {
			if !yield(s.points[i-1], s.points[i]) {
				return
			}
		}
	}
}

// Store is the board as this client knows it, in insertion order.
type Store struct {
	strokes []*Stroke
	byID    map[string]*Stroke
	// live holds strokes still being drawn; end releases them.
	live map[string]*Stroke
}

func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Stroke),
		live: make(map[string]*Stroke),
	}
}

// ApplyStroke folds a received stroke message into the store. An unseen id
// creates the stroke seeded with the first point; every message then
// contributes its points after the first, which is the anchor the sender
// repeats from its previous flush. The returned polyline is what changed
// on screen, starting at the stroke's previous last point.
func (s *Store) ApplyStroke(m config.Stroke) []config.Point {
	if m.ID == "" || len(m.Points) == 0 {
		return nil
	}

	st, ok := s.byID[m.ID]
	if !ok {
		st = s.create(m.ID, m.Name, Style{Mode: m.Mode, Color: m.Color, Size: m.Size}, m.Points[0])
	}

	from := len(st.points) - 1
	st.points = append(st.points, m.Points[1:]...)
	return slices.Clone(st.points[from:])
}

func (s *Store) ApplyEnd(id string) {
	delete(s.live, id)
}

func (s *Store) ApplyClear() {
	s.strokes = nil
	clear(s.byID)
	clear(s.live)
}

// UndoLastOwn drops the newest stroke by author. It is local only: peers
// keep the stroke until they clear.
func (s *Store) UndoLastOwn(author string) bool {
	for i := len(s.strokes) - 1; i >= 0; i-- {
		st := s.strokes[i]
		if st.Author != author {
			continue
		}
		s.strokes = slices.Delete(s.strokes, i, i+1)
		delete(s.byID, st.ID)
		delete(s.live, st.ID)
		return true
	}
	return false
}

// Begin starts a locally drawn stroke. It reports false if id is taken.
func (s *Store) Begin(id, author string, style Style, p config.Point) bool {
	if _, ok := s.byID[id]; ok {
		return false
	}
	s.create(id, author, style, p)
	return true
}

// Append adds p to a live stroke and returns the point it joins.
func (s *Store) Append(id string, p config.Point) (config.Point, bool) {
	st, ok := s.live[id]
	if !ok {
		return config.Point{}, false
	}
	prev := st.points[len(st.points)-1]
	st.points = append(st.points, p)
	return prev, true
}

// Last is the tail of a live stroke.
func (s *Store) Last(id string) (config.Point, bool) {
	st, ok := s.live[id]
	if !ok {
		return config.Point{}, false
	}
	return st.points[len(st.points)-1], true
}

func (s *Store) Len(id string) int {
	if st, ok := s.byID[id]; ok {
		return len(st.points)
	}
	return 0
}

// Tail copies the points of id from index from onwards.
func (s *Store) Tail(id string, from int) []config.Point {
	st, ok := s.byID[id]
	if !ok || from >= len(st.points) {
		return nil
	}
	return slices.Clone(st.points[max(from, 0):])
}

func (s *Store) Get(id string) (*Stroke, bool) {
	st, ok := s.byID[id]
	return st, ok
}

// All yields strokes oldest first, which is their paint order.
func (s *Store) All() iter.Seq[*Stroke] {
	return slices.Values(s.strokes)
}

func (s *Store) Count() int { return len(s.strokes) }

func (s *Store) create(id, author string, style Style, first config.Point) *Stroke {
	st := &Stroke{
		ID:     id,
		Author: author,
		Style:  style.normalized(),
		points: []config.Point{first},
	}
	s.strokes = append(s.strokes, st)
	s.byID[id] = st
	s.live[id] = st
	return st
}
