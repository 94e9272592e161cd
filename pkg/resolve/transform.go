package resolve

import (
	"strings"

	"github.com/japaniel/bananadict/pkg/lexicon"
)

// Row is one display-ready dictionary row.
type Row struct {
	Word       string
	Definition string
	POS        string
}

// Stats summarizes a Transform run.
type Stats struct {
	Input      int
	Roots      int
	Unresolved int
	Single     int
	Multi      int
	// MultiUnresolved counts multi-root dependents for which no candidate
	// carried a definition.
	MultiUnresolved int
	// UnresolvedRoots lists, in first-seen order, root spellings that had no
	// root entry.
	UnresolvedRoots []string
	// Rules counts which tie-break resolved each multi-root dependent.
	Rules map[Rule]int
}

// Result is the output of Transform.
type Result struct {
	Rows  []Row
	Stats Stats
}

// Transform resolves a whole lexicon. Rows come out as roots first (with
// unresolved entries appended, standing in with their own fields), then
// single-root dependents, then multi-root dependents; each group keeps
// lexicon order. Every input entry yields exactly one row.
func Transform(entries []lexicon.Entry) (*Result, error) {
	p, err := Partition(entries)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		Input:      len(entries),
		Roots:      len(p.Roots),
		Unresolved: len(p.Unresolved),
		Single:     len(p.Single),
		Multi:      len(p.Multi),
		Rules:      make(map[Rule]int),
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range p.Roots {
		rows = append(rows, assemble(e.Word, CleanDefinition(e.Definition), e.POS))
	}

	seen := make(map[string]bool)
	for _, e := range p.Unresolved {
		if !seen[e.Root] {
			seen[e.Root] = true
			stats.UnresolvedRoots = append(stats.UnresolvedRoots, e.Root)
		}
		rows = append(rows, assemble(e.Word, CleanDefinition(e.Definition), e.POS))
	}

	for _, d := range p.Single {
		res := ResolveSingle(p.Candidates(d.Root))
		rows = append(rows, resolvedRow(d, res))
	}

	for _, d := range p.Multi {
		res := ResolveMulti(d, p.Candidates(d.Root))
		if res.Outcome == Unresolved {
			stats.MultiUnresolved++
		} else {
			stats.Rules[res.Rule]++
		}
		rows = append(rows, resolvedRow(d, res))
	}

	return &Result{Rows: rows, Stats: stats}, nil
}

// resolvedRow keeps the dependent's spelling and takes definition and POS
// from the chosen root. An unresolved dependent keeps its own POS and gets no
// definition.
func resolvedRow(dep lexicon.Entry, res Resolution) Row {
	if res.Outcome == Unresolved {
		return assemble(dep.Word, "", dep.POS)
	}
	return assemble(dep.Word, res.Definition, res.POS)
}

// assemble applies the shared surface formatting.
func assemble(word, definition, pos string) Row {
	return Row{
		Word:       strings.ToLower(word),
		Definition: definition,
		POS:        strings.ReplaceAll(pos, "_", " "),
	}
}
