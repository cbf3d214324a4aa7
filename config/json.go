package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the value of the "t" tag every wire message carries.
type Kind string

const (
	KindHello     Kind = "hello"
	KindPeerJoin  Kind = "peer-join"
	KindPeerLeave Kind = "peer-leave"
	KindStroke    Kind = "stroke"
	KindEnd       Kind = "end"
	KindClear     Kind = "clear"
	KindCursor    Kind = "cursor"
)

var ErrUnknownKind = errors.New("unknown message kind")

// Relayable reports whether a participant may send messages of kind k.
// The server-issued presence notices are not relayable.
func (k Kind) Relayable() bool {
	switch k {
	case KindStroke, KindEnd, KindClear, KindCursor:
		return true
	default:
		return false
	}
}

// Msg is one message of the live board protocol. The set of
// implementations is closed: Hello, PeerJoin, PeerLeave, Stroke, End,
// Clear and Cursor.
type Msg interface {
	Kind() Kind
	isMsg()
}

// Point is a logical canvas coordinate, encoded as [x,y].
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

type Hello struct {
	Name string `json:"name"`
}

type PeerJoin struct {
	Name string `json:"name"`
}

type PeerLeave struct {
	Name string `json:"name"`
}

// Stroke carries a style and the points of one stroke that were not sent
// before, preceded by the last point that was.
type Stroke struct {
	ID     string  `json:"id"`
	Mode   Mode    `json:"mode,omitempty"`
	Color  string  `json:"color,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Points []Point `json:"pts"`
	Name   string  `json:"name,omitempty"`
}

type End struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Clear struct {
	Name string `json:"name,omitempty"`
}

type Cursor struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

func (Hello) Kind() Kind     { return KindHello }
func (PeerJoin) Kind() Kind  { return KindPeerJoin }
func (PeerLeave) Kind() Kind { return KindPeerLeave }
func (Stroke) Kind() Kind    { return KindStroke }
func (End) Kind() Kind       { return KindEnd }
func (Clear) Kind() Kind     { return KindClear }
func (Cursor) Kind() Kind    { return KindCursor }

func (Hello) isMsg()     {}
func (PeerJoin) isMsg()  {}
func (PeerLeave) isMsg() {}
func (Stroke) isMsg()    {}
func (End) isMsg()       {}
func (Clear) isMsg()     {}
func (Cursor) isMsg()    {}

// Encode marshals m as a JSON object with its "t" tag first.
func Encode(m Msg) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}

	tag, _ := json.Marshal(m.Kind())
	out := make([]byte, 0, len(body)+len(tag)+6)
	out = append(out, `{"t":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	out = append(out, body[1:]...)
	return out, nil
}

// MustEncode is Encode for messages built from trusted values.
func MustEncode(m Msg) []byte {
	b, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode parses one wire message. Frames whose tag is not a known kind
// fail with ErrUnknownKind.
func Decode(raw []byte) (Msg, error) {
	var env struct {
		T Kind `json:"t"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.T {
	case KindHello:
		return decodeAs[Hello](raw)
	case KindPeerJoin:
		return decodeAs[PeerJoin](raw)
	case KindPeerLeave:
		return decodeAs[PeerLeave](raw)
	case KindStroke:
		return decodeAs[Stroke](raw)
	case KindEnd:
		return decodeAs[End](raw)
	case KindClear:
		return decodeAs[Clear](raw)
	case KindCursor:
		return decodeAs[Cursor](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.T)
	}
}

func decodeAs[T Msg](raw []byte) (Msg, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", v.Kind(), err)
	}
	return v, nil
}
