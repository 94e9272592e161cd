package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/japaniel/bananadict/pkg/db"
)

// csvHeader is the column layout of the preprocessed CSV, matching the
// words table.
var csvHeader = []string{"word_friendly", "definition_friendly", "pos_friendly", "dictid"}

// WriteCSV writes rows, preceded by the header line, to w.
func WriteCSV(w io.Writer, rows []db.WordRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Word, r.Definition, r.POS, strconv.FormatInt(r.DictionaryID, 10)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Word, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, creating parent directories.
func WriteCSVFile(path string, rows []db.WordRow) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, rows)
}

// ReadCSV parses a preprocessed CSV written by WriteCSV.
func ReadCSV(r io.Reader) ([]db.WordRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("csv: column %d is %q, want %q", i+1, header[i], col)
		}
	}

	var rows []db.WordRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		dictID, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			line, _ := cr.FieldPos(3)
			return nil, fmt.Errorf("csv: line %d: invalid dictid %q", line, rec[3])
		}
		rows = append(rows, db.WordRow{
			Word:         rec[0],
			Definition:   rec[1],
			POS:          rec[2],
			DictionaryID: dictID,
		})
	}
	return rows, nil
}
