package intel

import (
	"encoding/json"
	"strings"
)

const (
	maxCandidateValueLen = 256
	maxCandidateValues   = 32
)

// Candidate is intelligence proposed by the text generator. It is untrusted:
// it can only add values during a turn merge and never removes anything the
// deterministic extractor found.
type Candidate map[Category][]string

// UnmarshalJSON decodes loosely shaped model output. Aliases are folded onto
// canonical keys, unknown keys and non-string values are dropped, and a bare
// string counts as a one-element list.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Candidate{}
	for key, value := range raw {
		cat, ok := ParseCategory(key)
		if !ok {
			continue
		}
		out[cat] = append(out[cat], decodeLooseStrings(value)...)
	}
	*c = out.Sanitize()
	return nil
}

// Sanitize trims values and drops empty, oversized or excess entries.
func (c Candidate) Sanitize() Candidate {
	out := Candidate{}
	for _, cat := range Categories {
		var kept []string
		for _, v := range c[cat] {
			v = strings.TrimSpace(v)
			if v == "" || len(v) > maxCandidateValueLen || contains(kept, v) {
				continue
			}
			kept = append(kept, v)
			if len(kept) == maxCandidateValues {
				break
			}
		}
		if len(kept) > 0 {
			out[cat] = kept
		}
	}
	return out
}

func decodeLooseStrings(value json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return []string{single}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}
