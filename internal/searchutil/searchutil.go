package searchutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// CJK and typographic punctuation that width folding leaves alone.
var punctuationReplacer = strings.NewReplacer(
	"「", "\"",
	"」", "\"",
	"『", "\"",
	"』", "\"",
	"〝", "\"",
	"〞", "\"",
	"“", "\"",
	"”", "\"",
	"„", "\"",
	"‘", "'",
	"’", "'",
	"‚", "'",
	"【", "[",
	"】", "]",
	"〔", "[",
	"〕", "]",
	"〖", "[",
	"〗", "]",
	"〘", "[",
	"〙", "]",
	"〈", "<",
	"〉", ">",
	"《", "<",
	"》", ">",
	"、", ",",
	"。", ".",
	"〜", "~",
	"…", "...",
)

// Normalize strips decorative glyphs, folds full-width and CJK punctuation to
// ASCII, collapses whitespace and trims. Case is preserved so the result can be
// sent to providers as a query. Normalize(Normalize(x)) == Normalize(x).
func Normalize(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}

	// Invisibles are dropped before composing so that marks separated by
	// them compose on the first pass.
	clean := width.Fold.String(value)
	clean = strings.Map(func(r rune) rune {
		switch {
		case isInvisible(r):
			return -1
		case isDecorative(r):
			return ' '
		case unicode.IsControl(r):
			return ' '
		default:
			return r
		}
	}, clean)
	clean = norm.NFC.String(clean)
	clean = punctuationReplacer.Replace(clean)

	return strings.Join(strings.Fields(clean), " ")
}

// NormalizeForMatch is Normalize plus lower-casing; used for comparisons only.
func NormalizeForMatch(value string) string {
	return strings.ToLower(Normalize(value))
}

func isDecorative(r rune) bool {
	switch {
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats: ★ ☆ ♪ ♫ ♥ ✦ ❤
		return true
	case r >= 0x25A0 && r <= 0x25FF: // geometric shapes: ● ○ ◆ ■ ▲
		return true
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs and emoji
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	case r == 0x2022 || r == 0x2023 || r == 0x2043 || r == 0x30FB || r == 0x00B7:
		return true
	default:
		return false
	}
}

func isInvisible(r rune) bool {
	switch r {
	case 0x200B, 0x200C, 0x200D, 0x2060, 0xFEFF, 0xFE0E, 0xFE0F:
		return true
	default:
		return false
	}
}

// HasSourceScript reports whether value contains CJK or Hangul characters.
func HasSourceScript(value string) bool {
	for _, r := range value {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}

func TokenizeNormalized(normalized string) []string {
	trimmed := strings.TrimSpace(normalized)
	if trimmed == "" {
		return nil
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}

	return tokens
}

func UniqueNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	unique := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		unique = append(unique, trimmed)
	}

	return unique
}
