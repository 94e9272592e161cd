package lexicon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// wordList is the top-level shape of a lexicon dump: { "words": [...] }.
type wordList struct {
	Words []Entry `json:"words"`
}

// LoadWordList reads a lexicon JSON file and returns its normalized entries
// in file order.
func LoadWordList(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := DecodeWordList(f)
	if err != nil {
		return nil, fmt.Errorf("load word list %s: %w", path, err)
	}
	return entries, nil
}

// DecodeWordList parses a lexicon document. The object wrapper
// { "words": [...] } is tried first, then a bare array.
func DecodeWordList(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty word list")
	}

	var entries []Entry
	if data[0] == '[' {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse word list as array: %w", err)
		}
	} else {
		var doc wordList
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse word list as object: %w", err)
		}
		entries = doc.Words
	}

	for i := range entries {
		entries[i] = entries[i].Normalize()
	}
	return entries, nil
}
