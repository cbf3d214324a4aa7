package board

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tk21111/journal_board/config"
)

func points(st *Stroke) []config.Point {
	var out []config.Point
	for _, p := range st.Points() {
		out = append(out, p)
	}
	return out
}

func TestStore_ApplyStroke(t *testing.T) {
	t.Run("should not double the anchor point", func(t *testing.T) {
		req := require.New(t)
		s := NewStore()

		// Given A's first flush of s1 then a follow-up led by the anchor
		s.ApplyStroke(config.Stroke{ID: "s1", Points: []config.Point{{0, 0}}})
		s.ApplyStroke(config.Stroke{ID: "s1", Points: []config.Point{{0, 0}, {5, 5}}})
		s.ApplyEnd("s1")

		// Then s1 is exactly the drawn line
		st, ok := s.Get("s1")
		req.True(ok)
		req.Equal([]config.Point{{0, 0}, {5, 5}}, points(st))
	})

	t.Run("should rebuild the sender's points however they were split", func(t *testing.T) {
		req := require.New(t)
		drawn := []config.Point{{0, 0}, {1, 2}, {3, 5}, {6, 6}, {9, 4}, {12, 1}, {15, 0}}

		for _, cuts := range [][]int{{7}, {2, 7}, {2, 3, 4, 5, 6, 7}, {4, 7}} {
			s := NewStore()
			sent := 0
			for _, n := range cuts {
				from := max(sent-1, 0)
				s.ApplyStroke(config.Stroke{ID: "s", Points: slices.Clone(drawn[from:n])})
				sent = n
			}
			st, _ := s.Get("s")
			req.Equal(drawn, points(st), cuts)
		}
	})

	t.Run("should keep style from the first message", func(t *testing.T) {
		req := require.New(t)
		s := NewStore()

		s.ApplyStroke(config.Stroke{ID: "e", Mode: config.ModeEraser, Color: "#111", Size: 20, Points: []config.Point{{0, 0}, {1, 1}}, Name: "ann"})
		s.ApplyStroke(config.Stroke{ID: "e", Mode: config.ModePen, Color: "#222", Size: 2, Points: []config.Point{{1, 1}, {2, 2}}, Name: "ann"})

		st, _ := s.Get("e")
		req.Equal(config.ModeEraser, st.Mode)
		req.Equal("#111", st.Color)
		req.Equal(20.0, st.Size)
		req.Equal("ann", st.Author)
	})

	t.Run("should fill in default style", func(t *testing.T) {
		req := require.New(t)
		s := NewStore()

		s.ApplyStroke(config.Stroke{ID: "d", Mode: "marker", Points: []config.Point{{0, 0}}})

		st, _ := s.Get("d")
		req.Equal(Style{Mode: config.ModePen, Color: DefaultColor, Size: DefaultSize}, st.Style)
	})

	t.Run("should return the polyline to paint", func(t *testing.T) {
		req := require.New(t)
		s := NewStore()

		first := s.ApplyStroke(config.Stroke{ID: "p", Points: []config.Point{{0, 0}, {1, 1}}})
		// the anchor here disagrees with what this client holds
		next := s.ApplyStroke(config.Stroke{ID: "p", Points: []config.Point{{9, 9}, {2, 2}, {3, 3}}})

		req.Equal([]config.Point{{0, 0}, {1, 1}}, first)
		req.Equal([]config.Point{{1, 1}, {2, 2}, {3, 3}}, next)
	})

	t.Run("should ignore empty messages", func(t *testing.T) {
		req := require.New(t)
		s := NewStore()

		req.Nil(s.ApplyStroke(config.Stroke{ID: "x"}))
		req.Nil(s.ApplyStroke(config.Stroke{Points: []config.Point{{1, 1}}}))
		req.Zero(s.Count())
	})
}

func TestStore_ToleratesUnknownIDs(t *testing.T) {
	req := require.New(t)
	s := NewStore()

	// end for a stroke never seen
	s.ApplyEnd("ghost")
	// points for a stroke whose start was missed
	s.ApplyStroke(config.Stroke{ID: "late", Points: []config.Point{{4, 4}, {5, 5}}})

	req.Equal(1, s.Count())
	st, _ := s.Get("late")
	req.Equal([]config.Point{{4, 4}, {5, 5}}, points(st))
}

func TestStore_ApplyEndKeepsPoints(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	s.ApplyStroke(config.Stroke{ID: "s", Points: []config.Point{{0, 0}, {1, 1}}})

	s.ApplyEnd("s")

	_, live := s.Last("s")
	req.False(live)
	req.Equal(2, s.Len("s"))
	_, ok := s.Append("s", config.Point{2, 2})
	req.False(ok)
}

func TestStore_ApplyClear(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		s.ApplyStroke(config.Stroke{ID: id, Points: []config.Point{{0, 0}, {1, 1}}})
	}

	s.ApplyClear()

	req.Zero(s.Count())
	_, ok := s.Get("a")
	req.False(ok)
	// ids may be reused after a clear
	req.True(s.Begin("a", "ann", Style{}, config.Point{0, 0}))
}

func TestStore_UndoLastOwn(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	add := func(id, author string) {
		s.ApplyStroke(config.Stroke{ID: id, Name: author, Points: []config.Point{{0, 0}, {1, 1}}})
	}
	add("a1", "ann")
	add("b1", "bob")
	add("a2", "ann")
	add("b2", "bob")

	// When ann undoes
	req.True(s.UndoLastOwn("ann"))

	// Then only her newest stroke is gone
	var ids []string
	for st := range s.All() {
		ids = append(ids, st.ID)
	}
	req.Equal([]string{"a1", "b1", "b2"}, ids)

	req.True(s.UndoLastOwn("ann"))
	req.False(s.UndoLastOwn("ann"))
	req.False(s.UndoLastOwn("cat"))
	req.Equal(2, s.Count())
}

func TestStore_LocalStroke(t *testing.T) {
	req := require.New(t)
	s := NewStore()

	req.True(s.Begin("l", "ann", Style{Color: "#000", Size: 2}, config.Point{0, 0}))
	req.False(s.Begin("l", "ann", Style{}, config.Point{9, 9}))

	prev, ok := s.Append("l", config.Point{1, 0})
	req.True(ok)
	req.Equal(config.Point{0, 0}, prev)
	s.Append("l", config.Point{2, 0})

	last, ok := s.Last("l")
	req.True(ok)
	req.Equal(config.Point{2, 0}, last)
	req.Equal(3, s.Len("l"))
	req.Equal([]config.Point{{1, 0}, {2, 0}}, s.Tail("l", 1))
	req.Nil(s.Tail("l", 3))
	req.Nil(s.Tail("missing", 0))

	// Tail is a copy
	tail := s.Tail("l", 0)
	tail[0] = config.Point{100, 100}
	st, _ := s.Get("l")
	req.Equal(config.Point{0, 0}, points(st)[0])
}
