package resolve

import "strings"

// HashtagDefinition is the one definition whose '#' is part of the text
// rather than lexicon markup.
const HashtagDefinition = "a word or phrase preceded by the symbol # that categorizes the accompanying text"

// CleanDefinition strips lexicon markup from a root definition: '*' and '#'
// are removed, then the {mdash} escape becomes an em dash. Nothing else
// changes.
func CleanDefinition(def string) string {
	if def == HashtagDefinition {
		return def
	}
	def = strings.ReplaceAll(def, "*", "")
	def = strings.ReplaceAll(def, "#", "")
	return strings.ReplaceAll(def, "{mdash}", "—")
}
