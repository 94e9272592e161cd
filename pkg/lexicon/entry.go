package lexicon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReferenceMarker prefixes a definition that borrows the meaning of another
// spelling, e.g. "< BAT".
const ReferenceMarker = "<"

// Entry is one word-form row of the raw lexicon.
type Entry struct {
	Word       string `json:"word"`
	Root       string `json:"root"`
	POS        string `json:"pos"`
	Num        int    `json:"num"`
	Definition string `json:"definition"`
}

// UnmarshalJSON accepts either an object with named fields or the positional
// form [word, root, pos, num, definition] used by the lexicon dumps.
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var cols []json.RawMessage
		if err := json.Unmarshal(data, &cols); err != nil {
			return err
		}
		if len(cols) != 5 {
			return fmt.Errorf("lexicon entry: expected 5 columns, got %d", len(cols))
		}
		var out Entry
		targets := []interface{}{&out.Word, &out.Root, &out.POS, &out.Num, &out.Definition}
		for i, col := range cols {
			if string(col) == "null" {
				continue
			}
			if err := json.Unmarshal(col, targets[i]); err != nil {
				return fmt.Errorf("lexicon entry: column %d: %w", i, err)
			}
		}
		*e = out
		return nil
	}

	// Alias drops the method set so the default decoder is used.
	type alias Entry
	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*e = Entry(out)
	return nil
}

// Normalize returns a copy with spellings upper-cased and trimmed, an empty
// root defaulted to the word itself and a missing sequence number set to 1.
func (e Entry) Normalize() Entry {
	e.Word = strings.ToUpper(strings.TrimSpace(e.Word))
	e.Root = strings.ToUpper(strings.TrimSpace(e.Root))
	if e.Root == "" {
		e.Root = e.Word
	}
	e.POS = strings.TrimSpace(e.POS)
	if e.Num < 1 {
		e.Num = 1
	}
	e.Definition = strings.TrimSpace(e.Definition)
	return e
}

// IsSelfRoot reports whether the entry names itself as its root.
func (e Entry) IsSelfRoot() bool { return e.Word == e.Root }

// IsReference reports whether the definition is a reference marker.
func (e Entry) IsReference() bool { return IsReference(e.Definition) }

// IsReference reports whether def points at another spelling.
func IsReference(def string) bool {
	return strings.HasPrefix(strings.TrimSpace(def), ReferenceMarker)
}

// ReferenceTarget extracts the upper-cased spelling a reference marker points
// at. The second whitespace-separated token is the target, so "< ADAPTION n"
// yields "ADAPTION". ok is false when def is not a marker or names no target.
func ReferenceTarget(def string) (target string, ok bool) {
	if !IsReference(def) {
		return "", false
	}
	fields := strings.Fields(def)
	if len(fields) < 2 {
		return "", false
	}
	return strings.ToUpper(fields[1]), true
}

// BaseCategory returns the part of a POS tag before its first underscore:
// "verb_past_participle" -> "verb".
func BaseCategory(pos string) string {
	base, _, _ := strings.Cut(pos, "_")
	return base
}
