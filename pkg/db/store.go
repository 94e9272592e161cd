package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ErrNotFound is returned when a query matches no row.
var ErrNotFound = errors.New("not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// EnsureDictionary returns the id of the dictionary called name, creating it
// or refreshing its description and selection flag.
func EnsureDictionary(db DBExecutor, name, description string, selected bool) (int64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("dictionary name must be non-empty")
	}

	var id int64
	err := db.QueryRow(`INSERT INTO dicts (name, description, selected)
			  VALUES (?, ?, ?)
			  ON CONFLICT(name)
			  DO UPDATE SET
			    description = excluded.description,
			    selected = excluded.selected
			  RETURNING dictid`, trimmed, description, selected).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert dictionary: %w", err)
	}
	return id, nil
}

// ListDictionaries returns every registered dictionary ordered by id.
func ListDictionaries(db DBExecutor) ([]Dictionary, error) {
	query, args, err := sq.Select("dictid", "name", "description", "selected").
		From("dicts").
		OrderBy("dictid").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dictionary
	for rows.Next() {
		var d Dictionary
		var desc sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &desc, &d.Selected); err != nil {
			return nil, err
		}
		d.Description = desc.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// ClearWords deletes every word row of a dictionary so it can be reloaded.
func ClearWords(db DBExecutor, dictID int64) (int64, error) {
	if dictID <= 0 {
		return 0, fmt.Errorf("dictID must be positive")
	}
	res, err := db.Exec(`DELETE FROM words WHERE dictid = ?`, dictID)
	if err != nil {
		return 0, fmt.Errorf("clear words: %w", err)
	}
	return res.RowsAffected()
}

// InsertWord stores one resolved row.
func InsertWord(db DBExecutor, w WordRow) error {
	if w.DictionaryID <= 0 {
		return fmt.Errorf("dictID must be positive")
	}
	if strings.TrimSpace(w.Word) == "" {
		return fmt.Errorf("word must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO words (word_friendly, definition_friendly, pos_friendly, dictid) VALUES (?, ?, ?, ?)`,
		w.Word, w.Definition, w.POS, w.DictionaryID)
	if err != nil {
		return fmt.Errorf("insert word %s: %w", w.Word, err)
	}
	return nil
}

// CountWords returns the number of rows stored for a dictionary.
func CountWords(db DBExecutor, dictID int64) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("words").Where(sq.Eq{"dictid": dictID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// scope restricts a words query to one dictionary, or to every selected
// dictionary when dictID is 0.
func scope(b sq.SelectBuilder, dictID int64) sq.SelectBuilder {
	if dictID > 0 {
		return b.Where(sq.Eq{"w.dictid": dictID})
	}
	return b.Join("dicts d ON d.dictid = w.dictid").Where(sq.Eq{"d.selected": true})
}

// LookupWord returns every definition stored for a spelling. Lookup is
// case-insensitive. ErrNotFound is returned when the spelling is absent.
func LookupWord(db DBExecutor, word string, dictID int64) (Word, error) {
	name := strings.ToLower(strings.TrimSpace(word))
	b := sq.Select("w.definition_friendly", "w.pos_friendly").
		From("words w").
		Where(sq.Eq{"w.word_friendly": name})
	query, args, err := scope(b, dictID).OrderBy("w.rowid").ToSql()
	if err != nil {
		return Word{}, err
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return Word{}, err
	}
	defer rows.Close()

	out := Word{Name: name}
	for rows.Next() {
		var def, pos sql.NullString
		if err := rows.Scan(&def, &pos); err != nil {
			return Word{}, err
		}
		out.Definitions = append(out.Definitions, Definition{Text: def.String, POS: pos.String})
	}
	if err := rows.Err(); err != nil {
		return Word{}, err
	}
	if !out.Found() {
		return out, fmt.Errorf("word %q: %w", name, ErrNotFound)
	}
	return out, nil
}

// RandomWord picks a random stored word of the given length (in letters)
// and returns it with its definitions.
func RandomWord(db DBExecutor, length int, dictID int64) (Word, error) {
	if length <= 0 {
		return Word{}, fmt.Errorf("length must be positive, got %d", length)
	}
	b := sq.Select("w.word_friendly").
		From("words w").
		Where(sq.Eq{"length(w.word_friendly)": length})
	query, args, err := scope(b, dictID).OrderBy("RANDOM()").Limit(1).ToSql()
	if err != nil {
		return Word{}, err
	}

	var name string
	if err := db.QueryRow(query, args...).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return Word{}, fmt.Errorf("word of length %d: %w", length, ErrNotFound)
		}
		return Word{}, err
	}
	return LookupWord(db, name, dictID)
}
