package middleware

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tk21111/journal_board/config"
)

var ErrNotRelayable = errors.New("message kind not relayable")

// StampSender prepares an inbound frame for relay. The frame must be a JSON
// object whose "t" is a relayable kind; its "name" is overwritten with the
// sender's display name and every other field is passed on untouched.
func StampSender(raw []byte, name string) ([]byte, config.Kind, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, "", fmt.Errorf("not an object: %w", err)
	}
	if fields == nil {
		return nil, "", fmt.Errorf("not an object: null")
	}

	var kind config.Kind
	if err := json.Unmarshal(fields["t"], &kind); err != nil {
		return nil, "", fmt.Errorf("bad tag: %w", err)
	}
	if !kind.Relayable() {
		return nil, kind, fmt.Errorf("%w: %q", ErrNotRelayable, kind)
	}

	stamp, err := json.Marshal(name)
	if err != nil {
		return nil, kind, err
	}
	fields["name"] = stamp

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, kind, err
	}
	return out, kind, nil
}
