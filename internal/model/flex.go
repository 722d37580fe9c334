package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes from either a JSON string or a JSON number.
//
// The front end forwards TMDB values untouched, so "id" and "year" arrive as
// 603, "603" or "tv-1399" depending on where they came from. Numbers keep their
// literal text (603 → "603"); null decodes to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("model: expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
