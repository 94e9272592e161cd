package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a file-name friendly identifier from a list name or path.
func Slugify(s string) string {
	s = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	s = strings.TrimSuffix(s, "-defs")
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// fillSlugs gives every word list without a slug one derived from its path.
func (c *Config) fillSlugs() {
	for i := range c.WordLists {
		if c.WordLists[i].Slug == "" {
			c.WordLists[i].Slug = Slugify(c.WordLists[i].Path)
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, fmt.Errorf("database.path is required"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", c.Log.Format))
	}

	if c.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive, got %d", c.Ingest.Workers))
	}
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize))
	}

	slugs := make(map[string]bool, len(c.WordLists))
	for i, wl := range c.WordLists {
		if strings.TrimSpace(wl.Name) == "" {
			errs = append(errs, fmt.Errorf("word_lists[%d].name is required", i))
		}
		if strings.TrimSpace(wl.Path) == "" {
			errs = append(errs, fmt.Errorf("word_lists[%d].path is required", i))
		}
		if wl.Slug != "" {
			if slugs[wl.Slug] {
				errs = append(errs, fmt.Errorf("word_lists[%d].slug %q is duplicated", i, wl.Slug))
			}
			slugs[wl.Slug] = true
		}
	}

	return errors.Join(errs...)
}
