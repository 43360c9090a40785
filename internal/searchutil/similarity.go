package searchutil

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	scoreExact            = 100
	scoreCandidateHasQ    = 90
	scoreQueryHasCand     = 85
	scoreCrossScript      = 80
	firstTokenPrefixBonus = 10
	lengthBonusCeiling    = 20
	transliterationBonus  = 15
)

type scriptEquivalent struct {
	source string
	latin  string
}

// Hand-maintained; latin side is lower-case and already normalized.
var crossScriptTable = []scriptEquivalent{
	{source: "進撃の巨人", latin: "attack on titan"},
	{source: "ワンピース", latin: "one piece"},
	{source: "鬼滅の刃", latin: "demon slayer"},
	{source: "呪術廻戦", latin: "jujutsu kaisen"},
	{source: "僕のヒーローアカデミア", latin: "my hero academia"},
	{source: "ナルト", latin: "naruto"},
	{source: "ドラゴンボール", latin: "dragon ball"},
	{source: "チェンソーマン", latin: "chainsaw man"},
	{source: "葬送のフリーレン", latin: "frieren"},
	{source: "ブルーロック", latin: "blue lock"},
	{source: "東京卍リベンジャーズ", latin: "tokyo revengers"},
	{source: "ハイキュー", latin: "haikyu"},
	{source: "ベルセルク", latin: "berserk"},
	{source: "ワンパンマン", latin: "one punch man"},
	{source: "怪獣8号", latin: "kaiju no. 8"},
	{source: "薬屋のひとりごと", latin: "the apothecary diaries"},
	{source: "スパイファミリー", latin: "spy x family"},
	{source: "나 혼자만 레벨업", latin: "solo leveling"},
	{source: "전지적 독자 시점", latin: "omniscient reader"},
	{source: "신의 탑", latin: "tower of god"},
}

// Score rates how well candidate matches query on a 0–100 scale. It is not
// symmetric: containment and the transliteration bonus depend on direction.
func Score(query string, candidate string) int {
	q := NormalizeForMatch(query)
	c := NormalizeForMatch(candidate)
	if q == "" || c == "" {
		return 0
	}

	if q == c {
		return scoreExact
	}
	if strings.Contains(c, q) {
		return scoreCandidateHasQ
	}
	if strings.Contains(q, c) {
		return scoreQueryHasCand
	}
	if crossScriptMatch(q, c) {
		return scoreCrossScript
	}

	queryTokens := scoringTokens(q)
	candidateTokens := scoringTokens(c)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	matches := 0
	for _, queryToken := range queryTokens {
		for _, candidateToken := range candidateTokens {
			if strings.Contains(candidateToken, queryToken) || strings.Contains(queryToken, candidateToken) {
				matches++
			}
		}
	}

	score := float64(matches) / float64(len(queryTokens)) * 100
	if strings.HasPrefix(c, queryTokens[0]) {
		score += firstTokenPrefixBonus
	}

	lengthDiff := utf8.RuneCountInString(c) - utf8.RuneCountInString(q)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff < lengthBonusCeiling {
		score += float64(lengthBonusCeiling - lengthDiff)
	}

	if HasSourceScript(q) && !HasSourceScript(c) {
		score += transliterationBonus
	}

	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

func crossScriptMatch(query string, candidate string) bool {
	for _, entry := range crossScriptTable {
		if strings.Contains(query, entry.source) && strings.Contains(candidate, entry.latin) {
			return true
		}
		if strings.Contains(query, entry.latin) && strings.Contains(candidate, entry.source) {
			return true
		}
	}
	return false
}

func scoringTokens(normalized string) []string {
	tokens := TokenizeNormalized(normalized)
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) > 2 {
			filtered = append(filtered, token)
		}
	}
	return filtered
}
