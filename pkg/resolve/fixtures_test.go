package resolve

import "github.com/japaniel/bananadict/pkg/lexicon"

func e(word, root, pos string, num int, def string) lexicon.Entry {
	return lexicon.Entry{Word: word, Root: root, POS: pos, Num: num, Definition: def}
}

// Excerpts of the NWL2020 lexicon.
var (
	batEntries = []lexicon.Entry{
		e("BAT", "BAT", "verb_present", 1, "to hit a baseball"),
		e("BATS", "BAT", "verb_present_third", 1, "< BAT"),
	}

	beatEntries = []lexicon.Entry{
		e("BEAT", "BEAT", "verb_past", 1, ""),
		e("BEAT", "BEAT", "verb_present", 1, "to strike repeatedly"),
		e("BEATEN", "BEAT", "verb_past_participle", 1, "< BEAT"),
	}

	agoraEntries = []lexicon.Entry{
		e("AGORA", "AGORA", "noun_singular", 1, "a marketplace in ancient Greece"),
		e("AGORA", "AGORA", "noun_singular", 2, "a monetary unit of Israel"),
		e("AGORAE", "AGORA", "noun_plural", 1, "< AGORA"),
		e("AGORAS", "AGORA", "noun_plural", 1, "< AGORA"),
		e("AGOROT", "AGORA", "noun_plural", 1, ""),
		e("AGOROT", "AGORA", "noun_plural", 2, "< AGORA"),
		e("AGOROTH", "AGORA", "noun_plural", 1, ""),
		e("AGOROTH", "AGORA", "noun_plural", 2, "< AGORA"),
	}

	knowEntries = []lexicon.Entry{
		e("KNOW", "KNOW", "verb_present", 1, "to have a true understanding of"),
		e("KNOWING", "KNOW", "verb_gerund", 1, "< KNOW"),
		e("KNOWING", "KNOWING", "adjective_positive", 1, "astute"),
		e("KNOWING", "KNOWING", "noun_singular", 1, "knowledge"),
		e("KNOWN", "KNOW", "verb_past", 1, ""),
		e("KNOWN", "KNOW", "verb_past_participle", 1, "< KNOW"),
		e("KNOWN", "KNOWN", "noun_singular", 1, "a mathematical quantity whose value is given"),
	}

	weirdEntries = []lexicon.Entry{
		e("BAHUVRIHI", "BAHUVRIHI", "noun_singular", 1, "a possessive, exocentric#, grammatical compound"),
		e("CALAMANDER", "CALAMANDER", "noun_singular", 1, "the ebony wood of the Disopyros quaesita* tree"),
		e("HASHTAG", "HASHTAG", "noun_singular", 1, HashtagDefinition),
	}

	pourEntries = []lexicon.Entry{
		e("POUR", "POUR", "verb_present", 1, "to cause to flow"),
		e("POURINGLY", "POURINGLY", "adverb_positive", 1, "< POUR"),
	}

	adaptEntries = []lexicon.Entry{
		e("ADAPTION", "ADAPTION", "noun_singular", 1, "the act of adapting"),
		e("ADAPTIVE", "ADAPTIVE", "adjective_positive", 1, "< ADAPTION n"),
		e("ADAPTIVITIES", "ADAPTIVITY", "noun_plural", 1, ""),
		e("ADAPTIVITY", "ADAPTIVITY", "noun_singular", 1, "< ADAPTIVE"),
	}
)

func concat(groups ...[]lexicon.Entry) []lexicon.Entry {
	var out []lexicon.Entry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// definitionsOf collects the definitions emitted for a display spelling.
func definitionsOf(rows []Row, word string) []string {
	var out []string
	for _, r := range rows {
		if r.Word == word {
			out = append(out, r.Definition)
		}
	}
	return out
}
