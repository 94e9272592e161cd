package resolve

import "github.com/japaniel/bananadict/pkg/lexicon"

// Outcome tags whether a dependent received a root's meaning.
type Outcome int

const (
	Unresolved Outcome = iota
	Resolved
)

func (o Outcome) String() string {
	if o == Resolved {
		return "resolved"
	}
	return "unresolved"
}

// Rule names the tie-break that chose a root meaning.
type Rule string

const (
	RuleNone          Rule = ""
	RuleSingleRoot    Rule = "single_root"
	RuleSameCategory  Rule = "same_category_sequence"
	RuleCategory      Rule = "category"
	RuleCategorySeq   Rule = "category_sequence"
	RuleCategoryDefn  Rule = "category_definition"
	RuleAnyDefinition Rule = "any_definition"
)

// Resolution is the meaning chosen for one dependent.
type Resolution struct {
	Outcome    Outcome
	Rule       Rule
	Definition string
	POS        string
}

func adopt(root lexicon.Entry, rule Rule) Resolution {
	return Resolution{
		Outcome:    Resolved,
		Rule:       rule,
		Definition: CleanDefinition(root.Definition),
		POS:        root.POS,
	}
}

// ResolveSingle copies the only meaning of a dependent's root.
func ResolveSingle(candidates []lexicon.Entry) Resolution {
	if len(candidates) != 1 {
		return Resolution{}
	}
	return adopt(candidates[0], RuleSingleRoot)
}

// ResolveMulti picks among several meanings of a dependent's root. The first
// rule that narrows the candidates wins:
//
//  1. all candidates share one POS and exactly one has the dependent's number
//  2. exactly one candidate has the dependent's base category
//  3. of those, exactly one has the dependent's number
//  4. of those, the first with a non-empty definition
//  5. any candidate with a non-empty definition
//
// Candidates must be in lexicon order; rules 4 and 5 take the first match.
func ResolveMulti(dep lexicon.Entry, candidates []lexicon.Entry) Resolution {
	if len(candidates) == 0 {
		return Resolution{}
	}

	if samePOS(candidates) {
		if m := filter(candidates, sameNum(dep.Num)); len(m) == 1 {
			return adopt(m[0], RuleSameCategory)
		}
	}

	base := lexicon.BaseCategory(dep.POS)
	byCategory := filter(candidates, func(e lexicon.Entry) bool {
		return lexicon.BaseCategory(e.POS) == base
	})
	if len(byCategory) == 1 {
		return adopt(byCategory[0], RuleCategory)
	}

	if len(byCategory) > 1 {
		byNum := filter(byCategory, sameNum(dep.Num))
		if len(byNum) == 1 {
			return adopt(byNum[0], RuleCategorySeq)
		}
		if m := filter(byNum, hasDefinition); len(m) > 0 {
			return adopt(m[0], RuleCategoryDefn)
		}
	}

	if m := filter(candidates, hasDefinition); len(m) > 0 {
		return adopt(m[0], RuleAnyDefinition)
	}
	return Resolution{}
}

func samePOS(entries []lexicon.Entry) bool {
	for _, e := range entries[1:] {
		if e.POS != entries[0].POS {
			return false
		}
	}
	return true
}

func sameNum(n int) func(lexicon.Entry) bool {
	return func(e lexicon.Entry) bool { return e.Num == n }
}

func hasDefinition(e lexicon.Entry) bool { return e.Definition != "" }

func filter(entries []lexicon.Entry, keep func(lexicon.Entry) bool) []lexicon.Entry {
	var out []lexicon.Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
