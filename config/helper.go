package config

// Mode is the compositing mode of a stroke.
type Mode string

const (
	ModePen    Mode = "pen"
	ModeEraser Mode = "eraser"
)

// NormalizeMode maps anything that is not the eraser to the pen.
func NormalizeMode(m Mode) Mode {
	switch m {
	case ModeEraser:
		return ModeEraser
	default:
		return ModePen
	}
}
