// Package resolve turns raw lexicon entries into one-definition-per-form rows.
//
// Entries are partitioned into roots (entries defining a meaning) and
// dependents (inflected forms that inherit one). Dependents whose root
// spelling has a single meaning copy it directly; dependents of a polysemous
// root go through an ordered tie-break on part of speech, sequence number and
// definition presence.
package resolve

import (
	"errors"
	"fmt"

	"github.com/japaniel/bananadict/pkg/lexicon"
)

// ErrIntegrity is returned when partitioning does not account for every input
// entry exactly once. It signals a logic or data-shape defect and is fatal.
var ErrIntegrity = errors.New("resolve: partition integrity violation")

// Partitioned is the four-way classification of a lexicon. All slices keep
// input order. Dependent entries carry their effective root in Root.
type Partitioned struct {
	Roots      []lexicon.Entry
	Unresolved []lexicon.Entry
	Single     []lexicon.Entry
	Multi      []lexicon.Entry

	// byRoot maps a root spelling to the indexes of its meanings in Roots.
	byRoot map[string][]int
}

// Total returns the number of classified entries.
func (p *Partitioned) Total() int {
	return len(p.Roots) + len(p.Unresolved) + len(p.Single) + len(p.Multi)
}

// Candidates returns the root meanings for spelling in lexicon order.
func (p *Partitioned) Candidates(spelling string) []lexicon.Entry {
	idx := p.byRoot[spelling]
	if len(idx) == 0 {
		return nil
	}
	out := make([]lexicon.Entry, len(idx))
	for i, j := range idx {
		out[i] = p.Roots[j]
	}
	return out
}

// Partition classifies entries into roots, single-root dependents,
// multi-root dependents and unresolved entries.
//
// A self-rooted entry whose definition is a reference marker is a dependent
// of the marker's target. Those targets form an alias map that is collapsed
// by exactly one substitution pass and then applied to every dependent's
// root, so chains of two pointers resolve but longer ones do not.
func Partition(entries []lexicon.Entry) (*Partitioned, error) {
	p := &Partitioned{byRoot: make(map[string][]int)}

	var dependents []lexicon.Entry
	aliases := make(map[string]string)
	var aliasOrder []string

	for _, e := range entries {
		if !e.IsSelfRoot() {
			dependents = append(dependents, e)
			continue
		}
		if !e.IsReference() {
			p.byRoot[e.Word] = append(p.byRoot[e.Word], len(p.Roots))
			p.Roots = append(p.Roots, e)
			continue
		}
		if target, ok := lexicon.ReferenceTarget(e.Definition); ok {
			e.Root = target
			if _, seen := aliases[e.Word]; !seen {
				aliasOrder = append(aliasOrder, e.Word)
			}
			aliases[e.Word] = target
		}
		dependents = append(dependents, e)
	}

	if len(p.Roots)+len(dependents) != len(entries) {
		return nil, fmt.Errorf("%w: %d roots + %d dependents != %d entries",
			ErrIntegrity, len(p.Roots), len(dependents), len(entries))
	}

	// One level of nesting. The pass runs in first-seen order and updates in
	// place, matching how the chain was authored.
	for _, word := range aliasOrder {
		if next, ok := aliases[aliases[word]]; ok {
			aliases[word] = next
		}
	}

	for _, d := range dependents {
		if target, ok := aliases[d.Root]; ok {
			d.Root = target
		}
		switch n := len(p.byRoot[d.Root]); {
		case n == 0:
			p.Unresolved = append(p.Unresolved, d)
		case n == 1:
			p.Single = append(p.Single, d)
		default:
			p.Multi = append(p.Multi, d)
		}
	}

	if p.Total() != len(entries) {
		return nil, fmt.Errorf("%w: %d roots + %d unresolved + %d single + %d multi != %d entries",
			ErrIntegrity, len(p.Roots), len(p.Unresolved), len(p.Single), len(p.Multi), len(entries))
	}
	return p, nil
}
