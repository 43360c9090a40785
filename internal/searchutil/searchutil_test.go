package searchutil

import "testing"

func TestNormalizeStripsDecorationsAndFoldsPunctuation(t *testing.T) {
	tests := map[string]string{
		"★Hero☆ Academia♪":          "Hero Academia",
		"ＯＮＥ　ＰＩＥＣＥ！":               "ONE PIECE!",
		"【推しの子】":                    "[推しの子]",
		"「Title」":                   "\"Title\"",
		"  Multiple   spaces\there ": "Multiple spaces here",
		"Love ♥ Story ● Extra":       "Love Story Extra",
		"Sword Art・Online":           "Sword Art Online",
		"":                          "",
		"   ":                       "",
	}

	for input, expected := range tests {
		if got := Normalize(input); got != expected {
			t.Fatalf("Normalize(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"★Hero☆ Academia♪",
		"ＯＮＥ　ＰＩＥＣＥ！",
		"【推しの子】 ～Season 2～",
		"ｶﾞﾝﾀﾞﾑ",
		"Re:Zero − Starting Life in Another World",
		"“Quoted” ‘title’ …",
		"💕 Kiss × Sis ✨",
		"​zero‍width️",
		"Cafe" + string(rune(0x200B)) + string(rune(0x301)),
		"Cafe" + string(rune(0x2060)) + string(rune(0x301)),
		"Cafe" + string(rune(0xFEFF)) + string(rune(0x301)),
		"Cafe★" + string(rune(0x301)),
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestNormalizeComposesAcrossInvisibles(t *testing.T) {
	got := Normalize("Cafe" + string(rune(0x200B)) + string(rune(0x301)))
	if got != "Caf\u00e9" {
		t.Fatalf("expected composed %q, got %q", "Caf\u00e9", got)
	}
}

func TestExtractKeyword(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Some Title: Subtitle Extra", expected: "Some"},
		{input: "The Beginning After the End", expected: "Beginning"},
		{input: "DR. STONE", expected: "DR STONE"},
		{input: "\"Oshi no Ko\"", expected: "Oshi"},
		{input: "[Oneshot] Hero Story", expected: "Hero"},
		{input: "Solo Leveling - Ragnarok", expected: "Solo"},
		{input: "Solo Leveling | Official", expected: "Solo"},
		{input: "Tower of God (Season 3)", expected: "Tower"},
		{input: "進撃の巨人 〜Before the Fall〜", expected: "進撃の巨人"},
		{input: "★Kaguya-sama★ wa Kokurasetai", expected: "Kaguya-sama"},
		{input: "2 3 A", expected: "2 3 A"},
		{input: "", expected: ""},
	}

	for _, tc := range tests {
		if got := ExtractKeyword(tc.input); got != tc.expected {
			t.Fatalf("ExtractKeyword(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestScoreRules(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		expected  int
	}{
		{name: "exact", query: "One Piece", candidate: "One Piece", expected: 100},
		{name: "exact ignoring case and decoration", query: "one piece", candidate: "★ONE PIECE★", expected: 100},
		{name: "candidate contains query", query: "Hero", candidate: "My Hero Academia", expected: 90},
		{name: "query contains candidate", query: "My Hero Academia", candidate: "Hero", expected: 85},
		{name: "cross script source to latin", query: "進撃の巨人", candidate: "Attack on Titan", expected: 80},
		{name: "cross script latin to source", query: "Attack on Titan", candidate: "進撃の巨人", expected: 80},
		{name: "token overlap capped", query: "leveling solo", candidate: "solo leveling", expected: 100},
		{name: "empty query", query: "", candidate: "anything", expected: 0},
		{name: "no usable tokens", query: "ab", candidate: "xy", expected: 0},
	}

	for _, tc := range tests {
		if got := Score(tc.query, tc.candidate); got != tc.expected {
			t.Fatalf("%s: Score(%q, %q) expected %d, got %d", tc.name, tc.query, tc.candidate, tc.expected, got)
		}
	}
}

func TestScoreTransliterationBonusIsAsymmetric(t *testing.T) {
	forward := Score("勇者 brave tale", "the brave saga")
	if forward != 84 {
		t.Fatalf("expected source-script query to score 84, got %d", forward)
	}

	backward := Score("the brave saga", "勇者 brave tale")
	if backward != 52 {
		t.Fatalf("expected latin query to score 52, got %d", backward)
	}
}

func TestScoreSelfMatchIsPerfect(t *testing.T) {
	titles := []string{"Berserk", "ワンピース", "Kaiju No. 8", "나 혼자만 레벨업", "★Spy x Family★"}
	for _, title := range titles {
		if got := Score(title, title); got != 100 {
			t.Fatalf("Score(%q, %q): expected 100, got %d", title, title, got)
		}
	}
}
