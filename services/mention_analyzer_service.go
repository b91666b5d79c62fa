// services/mention_analyzer_service.go
package services

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/brandlens/mention-workflows/internal/config"
)

type mentionAnalyzer struct {
	exactConfidence      float64
	caseFoldedConfidence float64
	snippetWindow        int
}

// NewMentionAnalyzer creates the lexical mention detector. The confidence
// constants and snippet window come from DetectionConfig so deployments can
// tune them without a rebuild.
func NewMentionAnalyzer(cfg config.DetectionConfig) MentionAnalyzer {
	return &mentionAnalyzer{
		exactConfidence:      clamp01(cfg.ExactConfidence),
		caseFoldedConfidence: clamp01(cfg.CaseFoldedConfidence),
		snippetWindow:        cfg.SnippetWindow,
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Detect finds word-boundary lexical matches for each brand in text. The
// returned slice has exactly one entry per distinct brand, in de-duplicated
// input order. Brands whose names contain other brands are matched
// independently, so "Roam Research" never hides behind "Roam".
func (a *mentionAnalyzer) Detect(text string, brands []string) []Mention {
	ordered := dedupeBrands(brands)
	mentions := make([]Mention, len(ordered))
	for i, brand := range ordered {
		mentions[i] = Mention{Brand: brand}
	}

	if strings.TrimSpace(text) == "" {
		return mentions
	}

	// Scan longest brand first so a long name is located as one match before
	// any of its substrings are considered.
	scanOrder := make([]int, len(ordered))
	for i := range scanOrder {
		scanOrder[i] = i
	}
	sort.SliceStable(scanOrder, func(x, y int) bool {
		return len(ordered[scanOrder[x]]) > len(ordered[scanOrder[y]])
	})

	type hit struct {
		index  int // index into mentions
		offset int // first-match byte offset
	}
	var hits []hit

	for _, i := range scanOrder {
		brand := ordered[i]

		re, err := compileBrandPattern(brand)
		if err != nil {
			// Unmatchable brand text: treat as not mentioned rather than
			// aborting the whole result.
			continue
		}

		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}

		confidence := a.caseFoldedConfidence
		if text[loc[0]:loc[1]] == brand {
			confidence = a.exactConfidence
		}

		snippet := a.extractSnippet(text, loc[0], loc[1])

		mentions[i].Mentioned = true
		mentions[i].Confidence = clamp01(confidence)
		mentions[i].ContextSnippet = &snippet
		hits = append(hits, hit{index: i, offset: loc[0]})
	}

	// Position is the 1-based rank by first-match offset; ties keep brand
	// input order.
	sort.SliceStable(hits, func(x, y int) bool {
		if hits[x].offset != hits[y].offset {
			return hits[x].offset < hits[y].offset
		}
		return hits[x].index < hits[y].index
	})
	for rank, h := range hits {
		position := rank + 1
		mentions[h.index].Position = &position
	}

	return mentions
}

// compileBrandPattern builds a case-insensitive word-boundary pattern for the
// brand, including multi-word names. A \b anchor only works against a word
// character, so brands that start or end with punctuation ("Notes+", "@scale")
// get the anchor on their word-character side only.
func compileBrandPattern(brand string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(brand)
	if trimmed == "" {
		return nil, errors.New("empty brand")
	}

	pattern := regexp.QuoteMeta(trimmed)
	if isWordByte(trimmed[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(trimmed[len(trimmed)-1]) {
		pattern += `\b`
	}
	return regexp.Compile(`(?i)` + pattern)
}

// isWordByte mirrors RE2's ASCII \w class. Non-ASCII bytes are non-word: \b
// never matches next to them, so brands with non-ASCII edges skip the anchor.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// extractSnippet returns up to snippetWindow characters of context on each
// side of [start, end), with runs of whitespace collapsed, the way snippets
// are rendered in history views. The window counts runes, not bytes, so
// multi-byte text is never cut mid-character.
func (a *mentionAnalyzer) extractSnippet(text string, start, end int) string {
	from := start
	for n := 0; n < a.snippetWindow && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < a.snippetWindow && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text[from:to], " "))
}

// dedupeBrands trims each brand and drops duplicates and empties while
// preserving the order of each brand's first occurrence. The trimmed form is
// what matching and storage see, so a padded " Notion " still scores as an
// exact-case match.
func dedupeBrands(brands []string) []string {
	seen := make(map[string]struct{}, len(brands))
	ordered := make([]string, 0, len(brands))
	for _, brand := range brands {
		trimmed := strings.TrimSpace(brand)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, trimmed)
	}
	return ordered
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
