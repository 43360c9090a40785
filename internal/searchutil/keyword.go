package searchutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	keywordDelimiters = []string{":", "|", "–", "—", "―", " - ", "(", "[", "{", "<", "~"}

	numericWordPattern  = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
	leadingGroupPattern = regexp.MustCompile(`^\s*(?:\[[^\]]*\]|\([^)]*\)|\{[^}]*\}|<[^>]*>)\s*`)

	wrappingPairs = [][2]string{
		{"\"", "\""},
		{"'", "'"},
		{"[", "]"},
		{"(", ")"},
		{"{", "}"},
		{"<", ">"},
	}

	keywordStopWords = map[string]struct{}{
		"a":    {},
		"an":   {},
		"and":  {},
		"at":   {},
		"de":   {},
		"for":  {},
		"ga":   {},
		"in":   {},
		"is":   {},
		"my":   {},
		"ni":   {},
		"no":   {},
		"of":   {},
		"on":   {},
		"the":  {},
		"to":   {},
		"wa":   {},
		"with": {},
		"wo":   {},
	}
)

// ExtractKeyword reduces a noisy display title to a short search keyword: the
// first one or two meaningful words before the first strong delimiter. When
// nothing meaningful survives the normalized title is returned as-is.
func ExtractKeyword(title string) string {
	normalized := Normalize(title)
	if normalized == "" {
		return ""
	}

	unwrapped := stripWrapping(normalized)
	unwrapped = strings.TrimSpace(strings.ReplaceAll(unwrapped, "\"", " "))

	words := meaningfulWords(headBeforeDelimiter(unwrapped))
	if len(words) == 0 {
		stripped := unwrapped
		for leadingGroupPattern.MatchString(stripped) {
			stripped = leadingGroupPattern.ReplaceAllString(stripped, "")
		}
		words = meaningfulWords(headBeforeDelimiter(stripped))
	}
	if len(words) == 0 {
		return normalized
	}

	if utf8.RuneCountInString(words[0]) <= 2 && len(words) > 1 {
		return words[0] + " " + words[1]
	}
	return words[0]
}

func stripWrapping(value string) string {
	current := strings.TrimSpace(value)
	for {
		stripped := false
		for _, pair := range wrappingPairs {
			if len(current) < len(pair[0])+len(pair[1]) {
				continue
			}
			if strings.HasPrefix(current, pair[0]) && strings.HasSuffix(current, pair[1]) {
				inner := strings.TrimSpace(current[len(pair[0]) : len(current)-len(pair[1])])
				if inner == "" || strings.Contains(inner, pair[0]) || strings.Contains(inner, pair[1]) {
					continue
				}
				current = inner
				stripped = true
			}
		}
		if !stripped {
			return current
		}
	}
}

func headBeforeDelimiter(value string) string {
	cut := len(value)
	for _, delimiter := range keywordDelimiters {
		if index := strings.Index(value, delimiter); index >= 0 && index < cut {
			cut = index
		}
	}
	return strings.TrimSpace(value[:cut])
}

func meaningfulWords(segment string) []string {
	words := make([]string, 0, 2)
	for _, raw := range strings.Fields(segment) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if isTrivialWord(word) {
			continue
		}
		words = append(words, word)
		if len(words) == 2 {
			break
		}
	}
	return words
}

func isTrivialWord(word string) bool {
	if utf8.RuneCountInString(word) <= 1 {
		return true
	}
	if numericWordPattern.MatchString(word) {
		return true
	}
	_, stop := keywordStopWords[strings.ToLower(word)]
	return stop
}
