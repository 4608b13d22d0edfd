package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexID handles feeds that send identifiers as a JSON string ("42") or a
// number (42). null, "" and 0 all decode to the empty ID.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "0" {
			s = ""
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("FlexID: cannot parse %s", string(b))
	}
	if i, err := n.Int64(); err == nil && i == 0 {
		*f = ""
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

// FlexList accepts either an array of strings or a single comma separated
// string.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*l = splitList(str)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FlexDifficulty is a Difficulty decoded from a number or label, but never
// failing: garbage becomes DifficultyUnknown.
type FlexDifficulty Difficulty

func (f *FlexDifficulty) UnmarshalJSON(b []byte) error {
	var d Difficulty
	if err := d.UnmarshalJSON(b); err != nil {
		// floats and other odd encodings
		if v, ferr := strconv.ParseFloat(string(b), 64); ferr == nil {
			d = difficultyFromInt(int(v))
		} else {
			d = DifficultyUnknown
		}
	}
	*f = FlexDifficulty(d)
	return nil
}
