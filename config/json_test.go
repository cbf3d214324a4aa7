package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_PutsTagFirst(t *testing.T) {
	req := require.New(t)

	b, err := Encode(Stroke{ID: "s1", Mode: ModePen, Color: "#000", Size: 3, Points: []Point{{0, 0}, {5, 5}}})

	req.NoError(err)
	req.Equal(`{"t":"stroke","id":"s1","mode":"pen","color":"#000","size":3,"pts":[[0,0],[5,5]]}`, string(b))
}

func TestEncode_EmptyBody(t *testing.T) {
	req := require.New(t)

	b, err := Encode(Clear{})

	req.NoError(err)
	req.Equal(`{"t":"clear"}`, string(b))
	req.True(json.Valid(b))
}

func TestDecode(t *testing.T) {
	t.Run("should decode every known kind", func(t *testing.T) {
		req := require.New(t)
		msgs := []Msg{
			Hello{Name: "ann"},
			PeerJoin{Name: "bob"},
			PeerLeave{Name: "bob"},
			Stroke{ID: "s1", Mode: ModeEraser, Color: "#fff", Size: 12, Points: []Point{{1, 2}}, Name: "ann"},
			End{ID: "s1"},
			Clear{Name: "ann"},
			Cursor{X: 3, Y: 4, Name: "ann"},
		}

		for _, m := range msgs {
			got, err := Decode(MustEncode(m))
			req.NoError(err)
			req.Equal(m, got)
		}
	})

	t.Run("should read the deployed client's frames", func(t *testing.T) {
		req := require.New(t)

		got, err := Decode([]byte(`{"t":"stroke","id":"1700000000000-a1","mode":"pen","color":"#c5364a","size":6,"pts":[[10.5,20],[11,21]]}`))

		req.NoError(err)
		s, ok := got.(Stroke)
		req.True(ok)
		req.Equal("1700000000000-a1", s.ID)
		req.Equal([]Point{{10.5, 20}, {11, 21}}, s.Points)
		req.Equal(11.0, s.Points[1].X())
	})

	t.Run("should fail on unknown kind", func(t *testing.T) {
		req := require.New(t)

		_, err := Decode([]byte(`{"t":"dom-add","id":"x"}`))

		req.ErrorIs(err, ErrUnknownKind)
	})

	t.Run("should fail on malformed json", func(t *testing.T) {
		req := require.New(t)

		_, err := Decode([]byte(`{"t":`))

		req.Error(err)
		req.NotErrorIs(err, ErrUnknownKind)
	})
}

func TestKind_Relayable(t *testing.T) {
	req := require.New(t)

	for _, k := range []Kind{KindStroke, KindEnd, KindClear, KindCursor} {
		req.True(k.Relayable(), k)
	}
	for _, k := range []Kind{KindHello, KindPeerJoin, KindPeerLeave, "", "nope"} {
		req.False(k.Relayable(), k)
	}
}

func TestNormalizeMode(t *testing.T) {
	req := require.New(t)

	req.Equal(ModeEraser, NormalizeMode(ModeEraser))
	req.Equal(ModePen, NormalizeMode(ModePen))
	req.Equal(ModePen, NormalizeMode(""))
	req.Equal(ModePen, NormalizeMode("marker"))
}
