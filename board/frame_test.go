package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrames_RunsOncePerTick(t *testing.T) {
	req := require.New(t)
	var f Frames
	var ran []string

	f.Request(func() {
		ran = append(ran, "a")
		// a request made during a tick waits for the next one
		f.Request(func() { ran = append(ran, "c") })
	})
	f.Request(func() { ran = append(ran, "b") })

	req.Equal(2, f.Tick())
	req.Equal([]string{"a", "b"}, ran)
	req.Equal(1, f.Pending())

	req.Equal(1, f.Tick())
	req.Equal([]string{"a", "b", "c"}, ran)
	req.Zero(f.Tick())
}
