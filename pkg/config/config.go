// Package config loads bananadict settings from YAML and the environment.
package config

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig `yaml:"database"`
	Log       LogConfig      `yaml:"log"`
	Ingest    IngestConfig   `yaml:"ingest"`
	WordLists []WordList     `yaml:"word_lists"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"BANANADICT_DB_PATH" env-default:"banana-dict.sqlite"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// IngestConfig holds word-list processing settings.
type IngestConfig struct {
	Workers   int    `yaml:"workers"    env:"INGEST_WORKERS"    env-default:"2"`
	BatchSize int    `yaml:"batch_size" env:"INGEST_BATCH_SIZE" env-default:"500"`
	CSVDir    string `yaml:"csv_dir"    env:"INGEST_CSV_DIR"`
	DryRun    bool   `yaml:"dry_run"    env:"INGEST_DRY_RUN"`
}

// WordList describes one lexicon dump and the dictionary it becomes.
type WordList struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Path        string `yaml:"path"`
	URL         string `yaml:"url"`
	Selected    bool   `yaml:"selected"`
}

// DefaultWordLists returns the NASPA 2020 lists expected under ./data.
func DefaultWordLists() []WordList {
	return []WordList{
		{
			Name:        "NASPA Word List (2020)",
			Slug:        "nwl2020",
			Description: "The official word reference for SCRABBLE played in the United States and Canada",
			Path:        "data/nwl2020-defs.json",
			Selected:    true,
		},
		{
			Name:        "NASPA School Word List (2020)",
			Slug:        "nswl2020",
			Description: "The official word list used in School SCRABBLE competitions",
			Path:        "data/nswl2020-defs.json",
			Selected:    true,
		},
	}
}
