package providers

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	labelledNumberPattern = regexp.MustCompile(`(?i)\b(?:chapter|chap|ch|episode|ep)\.?\s*(\d+(?:\.\d+)?)`)
	firstNumberPattern    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// FirstArray returns the first of paths that resolves to a JSON array. An
// empty path means the root itself.
func FirstArray(root gjson.Result, paths ...string) (gjson.Result, bool) {
	for _, path := range paths {
		candidate := root
		if path != "" {
			candidate = root.Get(path)
		}
		if candidate.IsArray() {
			return candidate, true
		}
	}
	return gjson.Result{}, false
}

// EnvelopeFailed reports an explicit {"success": false} wrapper.
func EnvelopeFailed(root gjson.Result) bool {
	success := root.Get("success")
	return success.Exists() && success.Type == gjson.False
}

func FirstString(item gjson.Result, fields ...string) string {
	for _, field := range fields {
		value := item.Get(field)
		if !value.Exists() || value.IsObject() || value.IsArray() || value.Type == gjson.Null {
			continue
		}
		if trimmed := strings.TrimSpace(value.String()); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func FirstInt(item gjson.Result, fields ...string) *int {
	for _, field := range fields {
		value := item.Get(field)
		switch {
		case value.Type == gjson.Number:
			parsed := int(value.Int())
			return &parsed
		case value.Type == gjson.String:
			parsed, err := strconv.Atoi(strings.TrimSpace(value.Str))
			if err == nil {
				return &parsed
			}
		case value.IsArray():
			count := len(value.Array())
			return &count
		}
	}
	return nil
}

func FirstTime(item gjson.Result, fields ...string) *time.Time {
	for _, field := range fields {
		value := item.Get(field)
		switch value.Type {
		case gjson.String:
			if parsed, ok := parseTime(value.Str); ok {
				return &parsed
			}
		case gjson.Number:
			if parsed, ok := fromUnixTimestamp(value.Int()); ok {
				return &parsed
			}
		}
	}
	return nil
}

// StringList reads a list of names that may be an array of strings, an array
// of objects with a name/title, or a comma separated string.
func StringList(item gjson.Result, fields ...string) []string {
	for _, field := range fields {
		value := item.Get(field)
		if !value.Exists() {
			continue
		}

		values := make([]string, 0)
		switch {
		case value.IsArray():
			for _, element := range value.Array() {
				if element.IsObject() {
					if name := FirstString(element, "name", "title", "attributes.name.en"); name != "" {
						values = append(values, name)
					}
					continue
				}
				if trimmed := strings.TrimSpace(element.String()); trimmed != "" {
					values = append(values, trimmed)
				}
			}
		case value.Type == gjson.String:
			for _, part := range strings.Split(value.Str, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					values = append(values, trimmed)
				}
			}
		}
		if len(values) > 0 {
			return values
		}
	}
	return []string{}
}

// ChapterNumber picks an entry number: an explicit numeric field first, then a
// "chapter N" label in the title, then the first number in the title, then
// the 1-based position in the listing.
func ChapterNumber(explicit string, title string, position int) string {
	if formatted, ok := FormatNumber(explicit); ok {
		return formatted
	}
	if match := labelledNumberPattern.FindStringSubmatch(title); len(match) > 1 {
		if formatted, ok := FormatNumber(match[1]); ok {
			return formatted
		}
	}
	if match := firstNumberPattern.FindString(title); match != "" {
		if formatted, ok := FormatNumber(match); ok {
			return formatted
		}
	}
	return strconv.Itoa(position)
}

// FormatNumber canonicalises a decimal-capable number: "010" → "10",
// "10.50" → "10.5".
func FormatNumber(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return "", false
	}
	return strconv.FormatFloat(parsed, 'f', -1, 64), true
}

// EntryTitle replaces empty or number-only titles with "Chapter {number}".
func EntryTitle(title string, number string) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "Chapter " + number
	}
	if formatted, ok := FormatNumber(trimmed); ok && formatted == number {
		return "Chapter " + number
	}
	return trimmed
}

// CompareNumbers orders entry numbers numerically; non-numeric values sort
// after numeric ones and lexically among themselves.
func CompareNumbers(a string, b string) int {
	left, leftErr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	right, rightErr := strconv.ParseFloat(strings.TrimSpace(b), 64)

	switch {
	case leftErr == nil && rightErr == nil:
		switch {
		case left < right:
			return -1
		case left > right:
			return 1
		default:
			return 0
		}
	case leftErr == nil:
		return -1
	case rightErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return CompareNumbers(entries[i].Number, entries[j].Number) < 0
	})
}

// MarkLatest flags the first entry carrying the highest numeric number. When
// no entry has a numeric number the last entry is flagged.
func MarkLatest(entries []Entry) {
	latest := -1
	var highest float64
	for index := range entries {
		entries[index].IsLatest = false
		value, err := strconv.ParseFloat(strings.TrimSpace(entries[index].Number), 64)
		if err != nil {
			continue
		}
		if latest < 0 || value > highest {
			latest = index
			highest = value
		}
	}
	if latest < 0 {
		latest = len(entries) - 1
	}
	if latest >= 0 {
		entries[latest].IsLatest = true
	}
}

// IsSentinelImage reports whether rawURL matches a placeholder denylist entry.
func IsSentinelImage(rawURL string, denylist []string) bool {
	lower := strings.ToLower(rawURL)
	for _, fragment := range denylist {
		fragment = strings.ToLower(strings.TrimSpace(fragment))
		if fragment != "" && strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// AbsoluteURL resolves raw against base; absolute inputs are returned as-is.
func AbsoluteURL(base string, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "//") {
		return "https:" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return trimmed
	}
	return baseURL.ResolveReference(parsed).String()
}

func CloneHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	cloned := make(map[string]string, len(headers))
	for key, value := range headers {
		cloned[key] = value
	}
	return cloned
}

func parseTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02", "Jan 2, 2006", "January 2, 2006"} {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed.UTC(), true
		}
	}
	if unix, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return fromUnixTimestamp(unix)
	}
	return time.Time{}, false
}

func fromUnixTimestamp(value int64) (time.Time, bool) {
	if value <= 0 {
		return time.Time{}, false
	}
	if value > 1_000_000_000_000 {
		value = value / 1000
	}
	return time.Unix(value, 0).UTC(), true
}

// EscapePathSegments escapes every segment of an id that may itself contain
// slashes, such as "series-slug/chapter-10".
func EscapePathSegments(id string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(id), "/"), "/")
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
