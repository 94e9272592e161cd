package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/bananadict/pkg/config"
	"github.com/japaniel/bananadict/pkg/db"
)

// batLexicon is in the object-wrapped format.
const batLexicon = `{"words": [
	{"word": "BAT", "root": "BAT", "pos": "verb_present", "num": 1, "definition": "to hit a baseball"},
	{"word": "BATS", "root": "BAT", "pos": "verb_present_third", "num": 1, "definition": "< BAT"},
	{"word": "ZZZS", "root": "ZZZ", "pos": "noun_plural", "num": 1, "definition": "*sleep*"}
]}`

// agoraLexicon is in the positional format.
const agoraLexicon = `[
	["AGORA", "AGORA", "noun_singular", 1, "a marketplace in ancient Greece"],
	["AGORA", "AGORA", "noun_singular", 2, "a monetary unit of Israel"],
	["AGOROT", "AGORA", "noun_plural", 2, "< AGORA"]
]`

func writeLexicon(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testLists(t *testing.T) []config.WordList {
	dir := t.TempDir()
	return []config.WordList{
		{Name: "Bat List", Slug: "bat", Path: writeLexicon(t, dir, "bat-defs.json", batLexicon), Selected: true},
		{Name: "Agora List", Slug: "agora", Path: writeLexicon(t, dir, "agora-defs.json", agoraLexicon), Selected: true},
	}
}

func TestIngestStoresResolvedRows(t *testing.T) {
	conn := setupDB(t)
	csvDir := t.TempDir()

	ig := NewIngester(conn, nil)
	ig.BatchSize = 2
	ig.CSVDir = csvDir

	results, err := ig.Ingest(context.Background(), testLists(t))
	require.NoError(t, err)
	require.Len(t, results, 2)

	bat, agora := results[0], results[1]
	assert.Equal(t, int64(1), bat.DictionaryID)
	assert.Equal(t, int64(2), agora.DictionaryID)
	assert.Equal(t, 3, bat.Rows)
	assert.Equal(t, 3, bat.Written)
	assert.Equal(t, 1, bat.Stats.Unresolved)
	assert.Equal(t, []string{"ZZZ"}, bat.Stats.UnresolvedRoots)
	assert.Equal(t, 1, agora.Stats.Multi)
	assert.Equal(t, filepath.Join(csvDir, "agora-preprocessed.csv"), agora.CSVPath)

	bats, err := db.LookupWord(conn, "BATS", bat.DictionaryID)
	require.NoError(t, err)
	require.Len(t, bats.Definitions, 1)
	assert.Equal(t, db.Definition{Text: "to hit a baseball", POS: "verb present"}, bats.Definitions[0])

	zzzs, err := db.LookupWord(conn, "zzzs", bat.DictionaryID)
	require.NoError(t, err)
	assert.Equal(t, "sleep", zzzs.Definitions[0].Text)

	agorot, err := db.LookupWord(conn, "agorot", 0)
	require.NoError(t, err)
	assert.Equal(t, "a monetary unit of Israel", agorot.Definitions[0].Text)

	data, err := os.ReadFile(bat.CSVPath)
	require.NoError(t, err)
	rows, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []db.WordRow{
		{Word: "bat", Definition: "to hit a baseball", POS: "verb present", DictionaryID: 1},
		{Word: "zzzs", Definition: "sleep", POS: "noun plural", DictionaryID: 1},
		{Word: "bats", Definition: "to hit a baseball", POS: "verb present", DictionaryID: 1},
	}, rows)
}

func TestIngestReplacesPreviousRows(t *testing.T) {
	conn := setupDB(t)
	lists := testLists(t)
	ig := NewIngester(conn, nil)

	for i := 0; i < 2; i++ {
		_, err := ig.Ingest(context.Background(), lists)
		require.NoError(t, err)
	}

	dicts, err := db.ListDictionaries(conn)
	require.NoError(t, err)
	assert.Len(t, dicts, 2)
	n, err := db.CountWords(conn, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIngestFailedReloadKeepsPreviousRows(t *testing.T) {
	conn := setupDB(t)
	lists := testLists(t)[:1]
	ig := NewIngester(conn, nil)
	ig.BatchSize = 1

	results, err := ig.Ingest(context.Background(), lists)
	require.NoError(t, err)
	dictID := results[0].DictionaryID

	// The reload resolves to three rows, one of which the store rejects.
	broken := strings.Replace(batLexicon, `"word": "ZZZS"`, `"word": ""`, 1)
	require.NoError(t, os.WriteFile(lists[0].Path, []byte(broken), 0o644))

	results, err = ig.Ingest(context.Background(), lists)
	require.Error(t, err)
	assert.ErrorContains(t, results[0].Err, "word must be non-empty")
	assert.Equal(t, 3, results[0].Rows)
	assert.Zero(t, results[0].Written)

	n, err := db.CountWords(conn, dictID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	zzzs, err := db.LookupWord(conn, "zzzs", dictID)
	require.NoError(t, err)
	assert.Equal(t, "sleep", zzzs.Definitions[0].Text)
}

func TestIngestDryRun(t *testing.T) {
	csvDir := t.TempDir()
	ig := NewIngester(nil, nil)
	ig.DryRun = true
	ig.CSVDir = csvDir

	results, err := ig.Ingest(context.Background(), testLists(t))
	require.NoError(t, err)

	for i, res := range results {
		assert.Equal(t, int64(i+1), res.DictionaryID)
		assert.Zero(t, res.Written)
		assert.FileExists(t, res.CSVPath)
	}

	f, err := os.Open(results[1].CSVPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[0].DictionaryID)
}

func TestIngestReportsFailedList(t *testing.T) {
	conn := setupDB(t)
	lists := testLists(t)
	lists[1].Path = filepath.Join(t.TempDir(), "missing.json")

	results, err := NewIngester(conn, nil).Ingest(context.Background(), lists)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Agora List")

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 3, results[0].Written)
	assert.Error(t, results[1].Err)
}

func TestIngestRejectsBrokenLexicon(t *testing.T) {
	conn := setupDB(t)
	lists := testLists(t)[:1]
	lists[0].Path = writeLexicon(t, t.TempDir(), "broken.json", `{"words": [`)

	results, err := NewIngester(conn, nil).Ingest(context.Background(), lists)
	require.Error(t, err)
	assert.True(t, strings.Contains(results[0].Err.Error(), "load"))
}

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() error { return nil }

func TestIngestHandlesSubmitError(t *testing.T) {
	conn := setupDB(t)
	ig := NewIngester(conn, nil)
	// Inject failing pool so first Submit() returns an error
	ig.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	results, err := ig.Ingest(ctx, testLists(t))
	require.Error(t, err)
	for _, res := range results {
		assert.ErrorContains(t, res.Err, "submit failed")
	}
}

func TestIngestCanceledContext(t *testing.T) {
	conn := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIngester(conn, nil).Ingest(ctx, testLists(t))
	assert.Error(t, err)
}

func TestImportCSV(t *testing.T) {
	conn, dictID := setupDictionary(t)
	other, err := db.EnsureDictionary(conn, "Other", "", false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "test-preprocessed.csv")
	require.NoError(t, WriteCSVFile(path, rowsFor(dictID, "aa", "ab", "ad")))

	ig := NewIngester(conn, nil)
	n, err := ig.ImportCSV(context.Background(), path, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Importing again replaces rather than duplicates.
	_, err = ig.ImportCSV(context.Background(), path, 0)
	require.NoError(t, err)
	count, err := db.CountWords(conn, dictID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	n, err = ig.ImportCSV(context.Background(), path, other)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	count, err = db.CountWords(conn, other)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestImportCSVIsAllOrNothing(t *testing.T) {
	conn, dictID := setupDictionary(t)
	ig := NewIngester(conn, nil)
	ig.BatchSize = 1

	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	require.NoError(t, WriteCSVFile(good, rowsFor(dictID, "aa", "ab")))
	_, err := ig.ImportCSV(context.Background(), good, 0)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, WriteCSVFile(bad, rowsFor(dictID, "ad", "", "ae")))
	n, err := ig.ImportCSV(context.Background(), bad, 0)
	require.Error(t, err)
	assert.Zero(t, n)

	w, err := db.LookupWord(conn, "ab", dictID)
	require.NoError(t, err)
	assert.True(t, w.Found())
	count, err := db.CountWords(conn, dictID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "wrong header", in: "word,definition,pos,dictid\n"},
		{name: "bad dictid", in: "word_friendly,definition_friendly,pos_friendly,dictid\naa,lava,noun singular,x\n"},
		{name: "short row", in: "word_friendly,definition_friendly,pos_friendly,dictid\naa,lava\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	rows := []db.WordRow{{Word: "aa", Definition: "rough, cindery lava", POS: "noun singular", DictionaryID: 1}}
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t,
		"word_friendly,definition_friendly,pos_friendly,dictid\naa,\"rough, cindery lava\",noun singular,1\n",
		buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}
