package simulation

import (
	"math/rand"
	"strings"
)

// minMessagesForScoring is the shortest conversation the heuristics run on;
// anything shorter gets the neutral base score.
const minMessagesForScoring = 4

// baseScore computes the overall compatibility heuristic from the turn
// texts: reward balanced message lengths, questions (engagement), and
// non-ASCII content (emoji and expressive text), clamped to [50, 95].
func baseScore(texts []string) int {
	if len(texts) < minMessagesForScoring {
		return 50
	}

	half := len(texts) / 2
	if half < 1 {
		half = 1
	}
	var lenA, lenB int
	for i, t := range texts {
		if i%2 == 0 {
			lenA += len(t)
		} else {
			lenB += len(t)
		}
	}
	avgA := float64(lenA) / float64(half)
	avgB := float64(lenB) / float64(half)

	lo, hi := avgA, avgB
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi < 1 {
		hi = 1
	}
	lengthRatio := lo / hi

	var questions, nonASCII int
	for _, t := range texts {
		questions += strings.Count(t, "?")
		for _, r := range t {
			if r > 127 {
				nonASCII++
			}
		}
	}
	questionBonus := questions
	if questionBonus > 10 {
		questionBonus = 10
	}
	expressiveBonus := float64(nonASCII) / 2
	if expressiveBonus > 5 {
		expressiveBonus = 5
	}

	score := int(60 + lengthRatio*20 + float64(questionBonus) + expressiveBonus)
	if score > 95 {
		score = 95
	}
	if score < 50 {
		score = 50
	}
	return score
}

// offset returns a uniform random integer in [lo, hi] inclusive.
func offset(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func capped(score int) int {
	if score > 100 {
		return 100
	}
	return score
}

// ScoreCompatibility builds the five-facet compatibility report for a
// conversation. The facet scores jitter around the base score; the rng may
// be seeded in tests for deterministic reports.
func ScoreCompatibility(texts []string, rng *rand.Rand) []Insight {
	base := baseScore(texts)

	return []Insight{
		{
			ID:          "i1",
			Title:       "Overall Compatibility",
			Score:       base,
			Description: "Connection strength based on conversation analysis",
			Details:     "Analyzing communication patterns, engagement levels, and conversational flow.",
		},
		{
			ID:          "i2",
			Title:       "Communication Style",
			Score:       capped(base + offset(rng, -5, 10)),
			Description: "Similarity in texting patterns",
			Details:     "Message lengths, tone, and emoji usage are being compared.",
		},
		{
			ID:          "i3",
			Title:       "Conversation Flow",
			Score:       capped(base + offset(rng, -8, 8)),
			Description: "Back-and-forth rhythm analysis",
			Details:     "Measuring response balance and natural progression.",
		},
		{
			ID:          "i4",
			Title:       "Topic Alignment",
			Score:       capped(base + offset(rng, -5, 5)),
			Description: "Shared interests and topics",
			Details:     "Analyzing topic transitions and mutual engagement.",
		},
		{
			ID:          "i5",
			Title:       "Emotional Tone",
			Score:       capped(base + offset(rng, -3, 7)),
			Description: "Sentiment and energy match",
			Details:     "Comparing emotional expressions and enthusiasm levels.",
		},
	}
}
