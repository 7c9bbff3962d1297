// Package style derives a statistical fingerprint of how a person texts.
package style

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Capitalization classifies how a person starts their messages.
type Capitalization string

const (
	Lowercase    Capitalization = "lowercase"
	SentenceCase Capitalization = "sentence_case"
	Mixed        Capitalization = "mixed"
)

// Punctuation classifies a person's punctuation habits.
type Punctuation string

const (
	Exclamatory Punctuation = "exclamatory"
	Formal      Punctuation = "formal"
	Minimal     Punctuation = "minimal"
)

// Profile is a per-persona aggregate computed once at setup time from the
// persona's full response corpus. Displayed ratios are rounded to two
// decimals; classification always happens on the unrounded values.
type Profile struct {
	PersonaID          string         `json:"persona_id,omitempty"`
	AvgLength          float64        `json:"avg_length"`
	UsesEmojis         bool           `json:"uses_emojis"`
	EmojiFrequency     float64        `json:"emoji_frequency"`
	Capitalization     Capitalization `json:"capitalization"`
	CommonPhrases      []string       `json:"common_phrases,omitempty"`
	PunctuationStyle   Punctuation    `json:"punctuation_style"`
	VocabularyRichness float64        `json:"vocabulary_richness"`
}

// DefaultProfile is returned for a persona with zero history so the
// responder can still run its cold-start path.
func DefaultProfile() Profile {
	return Profile{
		AvgLength:          20,
		UsesEmojis:         false,
		EmojiFrequency:     0,
		Capitalization:     Mixed,
		PunctuationStyle:   Minimal,
		VocabularyRichness: 0.5,
	}
}

// emoji code point ranges: emoticons, symbols & pictographs, transport,
// regional indicators (flags), dingbats, and the enclosed/misc block.
var emojiRanges = []struct{ lo, hi rune }{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

func isEmoji(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// CountEmojis returns the number of emoji code points in s.
func CountEmojis(s string) int {
	n := 0
	for _, r := range s {
		if isEmoji(r) {
			n++
		}
	}
	return n
}

// Analyze computes a Profile from a persona's responses. Empty input
// returns DefaultProfile rather than failing.
func Analyze(responses []string) Profile {
	if len(responses) == 0 {
		return DefaultProfile()
	}

	n := float64(len(responses))

	var totalLen int
	var emojiCount int
	var firstCharUpper int
	var exclamations, periods int

	bigramCounts := make(map[string]int)
	bigramOrder := make([]string, 0)
	uniqueWords := make(map[string]struct{})
	totalWords := 0

	for _, text := range responses {
		totalLen += len(text)
		emojiCount += CountEmojis(text)
		exclamations += strings.Count(text, "!")
		periods += strings.Count(text, ".")

		for _, r := range text {
			if unicode.IsUpper(r) {
				firstCharUpper++
			}
			break
		}

		words := strings.Fields(strings.ToLower(text))
		totalWords += len(words)
		for _, w := range words {
			uniqueWords[w] = struct{}{}
		}
		for i := 0; i+1 < len(words); i++ {
			bigram := words[i] + " " + words[i+1]
			if _, seen := bigramCounts[bigram]; !seen {
				bigramOrder = append(bigramOrder, bigram)
			}
			bigramCounts[bigram]++
		}
	}

	capsRatio := float64(firstCharUpper) / n
	capitalization := Mixed
	switch {
	case capsRatio > 0.8:
		capitalization = SentenceCase
	case capsRatio < 0.2:
		capitalization = Lowercase
	}

	punctuation := Minimal
	switch {
	case exclamations > periods:
		punctuation = Exclamatory
	case float64(periods) > 0.5*n:
		punctuation = Formal
	}

	richness := 0.0
	if totalWords > 0 {
		richness = float64(len(uniqueWords)) / float64(totalWords)
	}

	return Profile{
		AvgLength:          round1(float64(totalLen) / n),
		UsesEmojis:         float64(emojiCount) > 0.1*n,
		EmojiFrequency:     round2(float64(emojiCount) / n),
		Capitalization:     capitalization,
		CommonPhrases:      topBigrams(bigramCounts, bigramOrder, 5),
		PunctuationStyle:   punctuation,
		VocabularyRichness: round2(richness),
	}
}

// topBigrams keeps the k most frequent bigrams with count > 1, ordered by
// descending frequency, ties broken by first occurrence.
func topBigrams(counts map[string]int, order []string, k int) []string {
	candidates := make([]string, 0, len(order))
	for _, b := range order {
		if counts[b] > 1 {
			candidates = append(candidates, b)
		}
	}

	firstSeen := make(map[string]int, len(order))
	for i, b := range order {
		firstSeen[b] = i
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return firstSeen[candidates[i]] < firstSeen[candidates[j]]
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
