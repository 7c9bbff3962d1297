package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_EmptyReturnsDefault(t *testing.T) {
	p := Analyze(nil)
	assert.Equal(t, DefaultProfile(), p)
}

func TestAnalyze_Capitalization(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		want      Capitalization
	}{
		{"all uppercase starts", []string{"Hey", "Sure", "Yes", "No", "Okay"}, SentenceCase},
		{"all lowercase starts", []string{"hey", "sure", "yes", "no", "okay"}, Lowercase},
		{"half and half", []string{"Hey", "sure", "Yes", "no"}, Mixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.responses).Capitalization)
		})
	}
}

func TestAnalyze_CapitalizationThresholdIsStrict(t *testing.T) {
	// Exactly 0.8 uppercase ratio stays mixed; the boundary is exclusive.
	responses := []string{"Hey", "Sure", "Yes", "No", "okay"}
	assert.Equal(t, Mixed, Analyze(responses).Capitalization)

	// Exactly 0.2 lowercase ratio stays mixed.
	responses = []string{"hey", "sure", "yes", "no", "Okay"}
	assert.Equal(t, Mixed, Analyze(responses).Capitalization)
}

func TestAnalyze_Punctuation(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		want      Punctuation
	}{
		{"more bangs than periods", []string{"yes!", "no way!!", "ok."}, Exclamatory},
		{"periods dominate", []string{"Sure.", "That works.", "no"}, Formal},
		{"neither", []string{"yeah", "maybe", "idk"}, Minimal},
		{"equal counts without period dominance", []string{"hi!", "bye."}, Minimal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.responses).PunctuationStyle)
		})
	}
}

func TestAnalyze_EmojiDetection(t *testing.T) {
	p := Analyze([]string{"hey 😂", "nice 🎉", "ok"})
	assert.True(t, p.UsesEmojis)
	assert.InDelta(t, 0.67, p.EmojiFrequency, 0.001)

	p = Analyze([]string{"hey", "nice", "ok"})
	assert.False(t, p.UsesEmojis)
	assert.Zero(t, p.EmojiFrequency)
}

func TestAnalyze_AvgLengthRounded(t *testing.T) {
	// Lengths 2 and 5 average to 3.5.
	p := Analyze([]string{"ab", "abcde"})
	assert.Equal(t, 3.5, p.AvgLength)
}

func TestAnalyze_VocabularyRichness(t *testing.T) {
	// 6 words, 2 unique.
	p := Analyze([]string{"go go go", "stop stop stop"})
	assert.Equal(t, 0.33, p.VocabularyRichness)

	// All unique.
	p = Analyze([]string{"one two three four"})
	assert.Equal(t, 1.0, p.VocabularyRichness)
}

func TestAnalyze_CommonPhrases(t *testing.T) {
	responses := []string{
		"sounds good to me",
		"sounds good honestly",
		"that sounds good",
		"no worries at all",
		"no worries man",
	}
	p := Analyze(responses)
	require.NotEmpty(t, p.CommonPhrases)
	assert.Equal(t, "sounds good", p.CommonPhrases[0])
	assert.Contains(t, p.CommonPhrases, "no worries")
}

func TestAnalyze_CommonPhrasesRequireRepeats(t *testing.T) {
	p := Analyze([]string{"totally unique words", "nothing repeats here"})
	assert.Empty(t, p.CommonPhrases)
}

func TestAnalyze_CommonPhrasesTieBreakByFirstSeen(t *testing.T) {
	// "aa bb" and "cc dd" both occur twice; "aa bb" appears first.
	p := Analyze([]string{"aa bb", "cc dd", "aa bb", "cc dd"})
	require.Len(t, p.CommonPhrases, 2)
	assert.Equal(t, []string{"aa bb", "cc dd"}, p.CommonPhrases)
}

func TestCountEmojis(t *testing.T) {
	assert.Equal(t, 0, CountEmojis("plain text"))
	assert.Equal(t, 2, CountEmojis("hi 😂🎉"))
	assert.Equal(t, 1, CountEmojis("flag 🇺"))
}
