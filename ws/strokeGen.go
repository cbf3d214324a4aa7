package ws

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/Tk21111/journal_board/config"
)

func genPoints(anchor *config.Point, n int) []config.Point {
	points := make([]config.Point, 0, n+1)
	if anchor != nil {
		points = append(points, *anchor)
	}
	for range n {
		points = append(points, config.Point{rand.Float64() * 1920, rand.Float64() * 1080})
	}
	return points
}

func genStroke(id string, points []config.Point) []byte {
	return config.MustEncode(config.Stroke{
		ID:     id,
		Mode:   config.ModePen,
		Color:  "#000000",
		Size:   3,
		Points: points,
	})
}

func genStrokeEnd(id string) []byte {
	return config.MustEncode(config.End{ID: id})
}

// burn feeds synthetic strokes from `from` into the hub, the way a fast
// drawer would: each update repeats the previous last point as its anchor.
// It returns once every frame is queued.
func burn(h *Hub, from Peer, strokes int, updatesPerStroke int) {
	for range strokes {
		id := uuid.NewString()

		points := genPoints(nil, 2)
		h.Inbound(from, genStroke(id, points))

		for range updatesPerStroke {
			last := points[len(points)-1]
			points = genPoints(&last, 5+rand.IntN(20))
			h.Inbound(from, genStroke(id, points))
		}

		h.Inbound(from, genStrokeEnd(id))
	}
}
