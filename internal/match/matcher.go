package match

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"oloom-quiz-service/internal/domain"
)

// Gradable reports whether the matcher knows how to verify the given kind.
func Gradable(kind domain.QuestionKind) bool {
	switch kind {
	case domain.KindChoice, domain.KindBoolean, domain.KindFreeText:
		return true
	}
	return false
}

// Verify decides correctness of a raw response against a question's canonical
// answer. Correctness is a hard boolean; confidence is informational only.
// Malformed input never errors, it grades as incorrect.
func Verify(q domain.Question, raw string) (bool, float64) {
	switch q.Kind {
	case domain.KindChoice:
		if strings.EqualFold(strings.TrimSpace(raw), q.CorrectLabel) {
			return true, 1
		}
		return false, 0
	case domain.KindBoolean:
		val, ok := parseBool(raw)
		if ok && val == q.CorrectBool {
			return true, 1
		}
		return false, 0
	case domain.KindFreeText:
		return verifyFreeText(q.CorrectText, raw)
	}
	return false, 0
}

// parseBool canonicalizes a response to true/false, covering ASCII booleans,
// 1/0, and the Arabic tokens for correct/incorrect. Unrecognized input is a
// no-match, never an error.
func parseBool(raw string) (val, ok bool) {
	switch Normalize(raw) {
	case "true", "1", "صح", "صحيح", "ص":
		return true, true
	case "false", "0", "خطا":
		return false, true
	}
	return false, false
}

// Containment only counts when the shorter string is this long and the
// lengths differ by at most this much, so trivially short substrings cannot
// match unrelated long answers.
const (
	containMinLen  = 4
	containMaxDiff = 2
)

// verifyFreeText grades a free-text ("term") response through a cascade:
// exact match, containment with a length guard, keyword coverage, then a
// length-graduated fuzzy similarity threshold.
func verifyFreeText(canonical, raw string) (bool, float64) {
	got := Normalize(raw)
	want := Normalize(canonical)
	if got == "" || want == "" {
		return false, 0
	}
	if got == want {
		return true, 1
	}

	gotLen := utf8.RuneCountInString(got)
	wantLen := utf8.RuneCountInString(want)
	shorter, longer := gotLen, wantLen
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if shorter >= containMinLen && longer-shorter <= containMaxDiff &&
		(strings.Contains(got, want) || strings.Contains(want, got)) {
		return true, 0.95
	}

	sim := similarity(got, want)

	gotTokens := keywords(got)
	wantTokens := keywords(want)
	common := 0
	for token := range gotTokens {
		if _, ok := wantTokens[token]; ok {
			common++
		}
	}
	if common > 0 && len(wantTokens) > 0 {
		coverage := float64(common) / float64(len(wantTokens))
		if coverage >= 0.5 {
			return true, math.Max(sim, coverage)
		}
	}

	// A single typed token matching the final (head) word of the canonical
	// answer is accepted: "الغازيه" should match "الحاله الغازيه".
	gotFields := strings.Fields(got)
	wantFields := strings.Fields(want)
	if len(gotFields) == 1 && len(wantFields) > 1 {
		token := stripArticle(gotFields[0])
		last := stripArticle(wantFields[len(wantFields)-1])
		if token == last && utf8.RuneCountInString(token) >= containMinLen {
			return true, math.Max(sim, 0.9)
		}
	}

	if sim >= fuzzyThreshold(longer) {
		return true, sim
	}
	return false, sim
}

// fuzzyThreshold grades short strings strictly and lets long definitional
// phrases tolerate small typos.
func fuzzyThreshold(length int) float64 {
	switch {
	case length <= 4:
		return 0.95
	case length <= 7:
		return 0.90
	}
	return 0.85
}

// similarity is a normalized edit-similarity ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// stoplist holds generic connective words carrying no answer signal.
var stoplist = map[string]struct{}{
	"هو": {}, "هي": {}, "هم": {}, "من": {}, "في": {}, "علي": {}, "عن": {},
	"الي": {}, "ان": {}, "او": {}, "ثم": {}, "يسمي": {}, "تسمي": {},
	"يطلق": {}, "عليه": {}, "عليها": {}, "نوع": {}, "انواع": {},
	"is": {}, "the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "called": {},
}

// keywords tokenizes a normalized string, strips the definite article, and
// discards stoplisted or single-letter tokens.
func keywords(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, field := range strings.Fields(normalized) {
		if _, stop := stoplist[field]; stop {
			continue
		}
		token := stripArticle(field)
		if _, stop := stoplist[token]; stop {
			continue
		}
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		out[token] = struct{}{}
	}
	return out
}
