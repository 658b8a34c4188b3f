package viewstate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spaghettifunk/extrudo/engine/core"
)

// Encode serializes a view state into its stored JSON form.
func Encode(vs *ViewState) ([]byte, error) {
	if vs == nil {
		return nil, errors.New("encode view state: nil state")
	}
	return json.Marshal(vs)
}

// Decode parses a stored record. Any syntax or type error is reported as
// core.ErrCorruptState.
func Decode(data []byte) (*ViewState, error) {
	var vs ViewState
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("decode view state: %w: %s", core.ErrCorruptState, err.Error())
	}
	if vs.Session != "" {
		if _, err := core.ParseIdentifier(vs.Session.String()); err != nil {
			core.LogDebug("dropping malformed session id %q", vs.Session)
			vs.Session = ""
		}
	}
	return &vs, nil
}
