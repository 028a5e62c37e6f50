package state

// Language names understood by the default engine configuration.
const (
	LanguageCSharp      = "csharp"
	LanguageVisualBasic = "visualbasic"
)

// LanguageSet is the set of project languages an engine can build.
type LanguageSet map[string]struct{}

// NewLanguageSet builds a set from language names.
func NewLanguageSet(languages ...string) LanguageSet {
	set := make(LanguageSet, len(languages))
	for _, lang := range languages {
		set[lang] = struct{}{}
	}
	return set
}

// DefaultLanguages returns the languages supported out of the box.
func DefaultLanguages() LanguageSet {
	return NewLanguageSet(LanguageCSharp, LanguageVisualBasic)
}

// Supports reports whether lang has a registered builder.
func (s LanguageSet) Supports(lang string) bool {
	_, ok := s[lang]
	return ok
}
