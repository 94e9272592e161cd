package db

import "strings"

// Dictionary is a named word list, e.g. "NASPA Word List (2020)".
type Dictionary struct {
	ID          int64
	Name        string
	Description string
	Selected    bool
}

// WordRow is one stored (word, definition, part of speech) row.
type WordRow struct {
	Word         string
	Definition   string
	POS          string
	DictionaryID int64
}

// NoDefinition is shown for rows that carry no definition text.
const NoDefinition = "No definition provided"

// Definition is a single meaning of a looked-up word.
type Definition struct {
	Text string
	POS  string
}

// DisplayText returns the definition or a placeholder when it is empty.
func (d Definition) DisplayText() string {
	if d.Text == "" {
		return NoDefinition
	}
	return d.Text
}

// posAbbreviations maps the short word-class tags of older word lists to
// the spelled-out class names the preprocessor writes.
var posAbbreviations = map[string]string{
	"n":      "noun",
	"v":      "verb",
	"conj":   "conjunction",
	"adv":    "adverb",
	"adj":    "adjective",
	"interj": "interjection",
	"pron":   "pronoun",
	"prep":   "preposition",
	"art":    "article",
}

// LongPOS spells out the word class at the head of the tag, so "n" becomes
// "noun" and "adj comparative" becomes "adjective comparative". Tags whose
// class is already spelled out, such as "verb present", are returned as is.
func (d Definition) LongPOS() string {
	pos := strings.TrimSpace(d.POS)
	head, rest, found := strings.Cut(pos, " ")
	long, ok := posAbbreviations[head]
	if !ok {
		return pos
	}
	if !found {
		return long
	}
	return long + " " + rest
}

// Word is a spelling together with all of its definitions.
type Word struct {
	Name        string
	Definitions []Definition
}

// Found reports whether the word exists in the searched dictionaries.
func (w Word) Found() bool { return len(w.Definitions) > 0 }
