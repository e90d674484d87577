package generation

import "regexp"

// Category is a classifier-assigned label describing the domain of input
// text, used to select category-specific prompt guidance.
type Category string

const (
	CategoryDSA          Category = "dsa"
	CategorySystemDesign Category = "system_design"
	CategoryProgramming  Category = "programming"
	CategoryLanguage     Category = "language"

	// CategoryGeneral is the default when no category clears its
	// strong-signal threshold.
	CategoryGeneral Category = "general"
)

// signalSet holds the lexical evidence for one category. Strong signals
// are near-unambiguous markers that must clear minStrong before the
// category is considered at all; weak signals are supporting evidence
// that only break ties among already-plausible categories.
type signalSet struct {
	category  Category
	minStrong int
	strong    []*regexp.Regexp
	weak      []*regexp.Regexp
}

var contentSignals = []signalSet{
	{
		category:  CategoryDSA,
		minStrong: 2,
		strong: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bconstraints\s*:`),
			regexp.MustCompile(`(?i)\bexample\s*\d*\s*:`),
			regexp.MustCompile(`(?i)\b(?:time|space)\s+complexity\b`),
			regexp.MustCompile(`\bO\([^)]{1,20}\)`),
			regexp.MustCompile(`(?i)\b(?:dynamic programming|binary search|linked list|two pointers|sliding window)\b`),
		},
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:array|graph|tree|heap|queue|stack|hash map)\b`),
			regexp.MustCompile(`(?i)\b(?:input|output)\s*:`),
			regexp.MustCompile(`(?i)\bedge cases?\b`),
			regexp.MustCompile(`(?i)\b(?:brute force|optimal solution)\b`),
		},
	},
	{
		category:  CategorySystemDesign,
		minStrong: 2,
		strong: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:load balanc\w+|consistent hashing|sharding|replication lag|cap theorem)\b`),
			regexp.MustCompile(`(?i)\b(?:message queue|event[- ]driven|pub[/-]?sub)\b`),
			regexp.MustCompile(`(?i)\b(?:qps|requests per second|p9[59] latency)\b`),
			regexp.MustCompile(`(?i)\b(?:horizontal|vertical)\s+scal\w+\b`),
			regexp.MustCompile(`(?i)\b(?:eventual|strong)\s+consistency\b`),
		},
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:cache|caching|cdn)\b`),
			regexp.MustCompile(`(?i)\b(?:database|datastore)\b`),
			regexp.MustCompile(`(?i)\b(?:microservices?|monolith)\b`),
			regexp.MustCompile(`(?i)\b(?:availability|durability|throughput|latency)\b`),
		},
	},
	{
		category:  CategoryProgramming,
		minStrong: 1,
		strong: []*regexp.Regexp{
			regexp.MustCompile("```"),
			regexp.MustCompile(`(?m)^\s*(?:func|def|class|public\s+static)\s+\w+`),
			regexp.MustCompile(`(?i)\b(?:stack trace|compile error|runtime error|segmentation fault)\b`),
		},
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:function|method|variable|parameter)\b`),
			regexp.MustCompile(`(?i)\b(?:returns?|throws?)\b`),
			regexp.MustCompile(`(?i)\b(?:syntax|keyword|operator)\b`),
		},
	},
	{
		category:  CategoryLanguage,
		minStrong: 2,
		strong: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:vocabulary|conjugation|conjugate[sd]?|declension)\b`),
			regexp.MustCompile(`(?i)\btranslat(?:e[sd]?|ion)\b`),
			regexp.MustCompile(`(?i)\b(?:kanji|hiragana|katakana|pinyin|hanzi|cyrillic)\b`),
			regexp.MustCompile(`(?i)\b(?:masculine|feminine|neuter)\s+(?:noun|gender)\b`),
		},
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:word|phrase|sentence)\b`),
			regexp.MustCompile(`(?i)\b(?:meaning|pronunciation)\b`),
			regexp.MustCompile(`(?i)\b(?:noun|verb|adjective|adverb)\b`),
		},
	},
}

// Classify scores the text against every category's signal patterns and
// returns the highest-scoring category, or CategoryGeneral when none
// clears its strong-signal threshold. Score is strong*3 + weak, so strong
// evidence dominates and weak signals only separate plausible candidates.
// Pure function: same text always yields the same category.
func Classify(text string) Category {
	best := CategoryGeneral
	bestScore := 0

	for _, set := range contentSignals {
		strong := 0
		for _, re := range set.strong {
			if re.MatchString(text) {
				strong++
			}
		}
		if strong < set.minStrong {
			continue
		}

		weak := 0
		for _, re := range set.weak {
			if re.MatchString(text) {
				weak++
			}
		}

		score := strong*3 + weak
		if score > bestScore {
			best = set.category
			bestScore = score
		}
	}

	return best
}
