package providers

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestChapterNumberPrecedence(t *testing.T) {
	tests := []struct {
		explicit string
		title    string
		position int
		want     string
	}{
		{explicit: "12", title: "Chapter 99", position: 1, want: "12"},
		{explicit: "", title: "Vol. 2 Chapter 15.5: Festival", position: 1, want: "15.5"},
		{explicit: "", title: "10", position: 4, want: "10"},
		{explicit: "", title: "Season 2 finale", position: 4, want: "2"},
		{explicit: "n/a", title: "Prologue", position: 7, want: "7"},
		{explicit: "010", title: "", position: 1, want: "10"},
	}

	for _, tc := range tests {
		if got := ChapterNumber(tc.explicit, tc.title, tc.position); got != tc.want {
			t.Fatalf("ChapterNumber(%q, %q, %d): expected %q, got %q", tc.explicit, tc.title, tc.position, tc.want, got)
		}
	}
}

func TestFormatNumberRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-1", "abc", ""} {
		if _, ok := FormatNumber(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
	if got, ok := FormatNumber("10.50"); !ok || got != "10.5" {
		t.Fatalf("expected 10.5, got %q", got)
	}
}

func TestEntryTitleReplacesNumericTitles(t *testing.T) {
	if got := EntryTitle("10", "10"); got != "Chapter 10" {
		t.Fatalf("expected Chapter 10, got %q", got)
	}
	if got := EntryTitle("  ", "3"); got != "Chapter 3" {
		t.Fatalf("expected Chapter 3, got %q", got)
	}
	if got := EntryTitle("The Return", "4"); got != "The Return" {
		t.Fatalf("expected descriptive title to be kept, got %q", got)
	}
}

func TestSortEntriesIsNumeric(t *testing.T) {
	entries := []Entry{{ID: "a", Number: "10"}, {ID: "b", Number: "9"}, {ID: "c", Number: "extra"}, {ID: "d", Number: "9.5"}}
	SortEntries(entries)
	MarkLatest(entries)

	want := []string{"b", "d", "a", "c"}
	for index, entry := range entries {
		if entry.ID != want[index] {
			t.Fatalf("expected %s at %d, got %s", want[index], index, entry.ID)
		}
	}
	if !entries[2].IsLatest {
		t.Fatalf("expected chapter 10 to be latest")
	}
	for _, index := range []int{0, 1, 3} {
		if entries[index].IsLatest {
			t.Fatalf("expected only one latest entry, %s also flagged", entries[index].ID)
		}
	}
}

func TestFirstArrayProbesPathsInOrder(t *testing.T) {
	root := gjson.Parse(`{"data":{"results":[1,2]},"results":"not an array"}`)
	items, ok := FirstArray(root, "results", "data.results")
	if !ok || len(items.Array()) != 2 {
		t.Fatalf("expected nested results array, got %s", items.Raw)
	}

	bare := gjson.Parse(`[{"id":1}]`)
	if _, ok := FirstArray(bare, "list", ""); !ok {
		t.Fatalf("expected root array to match the empty path")
	}
	if _, ok := FirstArray(root, "missing"); ok {
		t.Fatalf("expected no match")
	}
}

func TestStringListShapes(t *testing.T) {
	item := gjson.Parse(`{"a":["x",{"name":"y"}],"b":"p, q ,","c":[]}`)
	if got := StringList(item, "a"); len(got) != 2 || got[1] != "y" {
		t.Fatalf("unexpected list %v", got)
	}
	if got := StringList(item, "c", "b"); len(got) != 2 || got[0] != "p" || got[1] != "q" {
		t.Fatalf("expected comma separated fallback, got %v", got)
	}
	if got := StringList(item, "missing"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", got)
	}
}

func TestFirstTimeFormats(t *testing.T) {
	item := gjson.Parse(`{"iso":"2024-05-01T12:00:00Z","date":"2024-05-01","millis":1714564800000,"bad":"yesterday"}`)
	for _, field := range []string{"iso", "date", "millis"} {
		if FirstTime(item, field) == nil {
			t.Fatalf("expected %s to parse", field)
		}
	}
	if FirstTime(item, "bad") != nil {
		t.Fatalf("expected unparseable date to be nil")
	}
	if got := FirstTime(item, "millis"); got.Year() != 2024 {
		t.Fatalf("expected millisecond timestamp in 2024, got %v", got)
	}
}

func TestAbsoluteURLAndSentinels(t *testing.T) {
	if got := AbsoluteURL("https://api.example", "/img/a.png"); got != "https://api.example/img/a.png" {
		t.Fatalf("unexpected absolute url %q", got)
	}
	if got := AbsoluteURL("https://api.example", "//cdn.example/a.png"); got != "https://cdn.example/a.png" {
		t.Fatalf("unexpected protocol relative url %q", got)
	}
	if got := AbsoluteURL("https://api.example", "https://other.example/a.png"); got != "https://other.example/a.png" {
		t.Fatalf("expected absolute input unchanged, got %q", got)
	}
	if !IsSentinelImage("https://cdn.example/No-More-Chapter.png", []string{"no-more-chapter"}) {
		t.Fatalf("expected case-insensitive sentinel match")
	}
	if IsSentinelImage("https://cdn.example/1.png", []string{" "}) {
		t.Fatalf("expected blank denylist entries to be ignored")
	}
}

func TestEscapePathSegmentsKeepsSlashes(t *testing.T) {
	if got := EscapePathSegments("/series slug/chapter 10/"); got != "series%20slug/chapter%2010" {
		t.Fatalf("unexpected escaped path %q", got)
	}
}
