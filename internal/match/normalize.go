package match

import (
	"strings"
	"unicode"
)

// Normalize applies the deterministic Arabic text-cleanup pipeline used before
// any answer comparison: strip diacritics and tatweel, fold the hamza-bearing
// alef variants to bare alef, alef-maksura to yaa, taa-marbuta to haa, hamza
// on waw/yaa carriers to their carrier letter, replace anything that is not an
// Arabic letter, ASCII letter, digit, or whitespace with a space, collapse
// whitespace, trim, and lowercase the ASCII portion. Pure and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	mapped := make([]rune, 0, len(s))
	for _, r := range s {
		if isArabicMark(r) {
			continue
		}
		r = foldArabic(r)
		switch {
		case r >= 0x0600 && r <= 0x06FF,
			r >= 'a' && r <= 'z',
			r >= '0' && r <= '9',
			unicode.IsSpace(r):
			mapped = append(mapped, r)
		case r >= 'A' && r <= 'Z':
			mapped = append(mapped, unicode.ToLower(r))
		default:
			mapped = append(mapped, ' ')
		}
	}
	return strings.Join(strings.Fields(string(mapped)), " ")
}

// isArabicMark reports diacritics (U+0617..U+061A, U+064B..U+0652) and the
// tatweel elongation character.
func isArabicMark(r rune) bool {
	return (r >= 0x0617 && r <= 0x061A) || (r >= 0x064B && r <= 0x0652) || r == 0x0640
}

func foldArabic(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	case 'ؤ':
		return 'و'
	case 'ئ':
		return 'ي'
	}
	return r
}

// stripArticle removes the Arabic definite-article prefix from a token when
// enough of the token remains to stay meaningful.
func stripArticle(token string) string {
	trimmed := strings.TrimPrefix(token, "ال")
	if trimmed != token && len([]rune(trimmed)) >= 2 {
		return trimmed
	}
	return token
}
