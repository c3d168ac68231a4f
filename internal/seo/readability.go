package seo

import (
	"regexp"
	"strings"

	"draftsmith/internal/core"
)

var (
	sentenceEndRe = regexp.MustCompile(`[.!?]+(\s|$)`)
	wordTokenRe   = regexp.MustCompile(`[a-zA-Z]+(?:['-][a-zA-Z]+)*`)
	vowelGroupRe  = regexp.MustCompile(`[aeiouy]+`)
)

// Words tokenizes text into alphabetic words, ignoring markdown syntax and
// numbers.
func Words(text string) []string {
	return wordTokenRe.FindAllString(text, -1)
}

// AnalyzeReadability computes the Flesch reading-ease approximation
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words), clamped to
// 0-100. Syllables are estimated by counting vowel groups.
func AnalyzeReadability(text string) core.ReadabilityAnalysis {
	words := Words(text)
	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}

	result := core.ReadabilityAnalysis{
		WordCount:     len(words),
		SentenceCount: sentences,
		SyllableCount: syllables,
	}
	if len(words) == 0 || sentences == 0 {
		return result
	}

	result.AvgSentenceLen = float64(len(words)) / float64(sentences)
	result.AvgSyllablesWord = float64(syllables) / float64(len(words))

	flesch := 206.835 - 1.015*result.AvgSentenceLen - 84.6*result.AvgSyllablesWord
	if flesch < 0 {
		flesch = 0
	}
	if flesch > 100 {
		flesch = 100
	}
	result.FleschScore = round2(flesch)
	result.ReadingLevel = readingLevel(flesch)
	result.GradeLevel = gradeLevel(flesch)
	return result
}

func countSentences(text string) int {
	n := len(sentenceEndRe.FindAllString(text, -1))
	if n == 0 && strings.TrimSpace(text) != "" {
		n = 1
	}
	return n
}

// CountSyllables estimates syllables in a word by vowel groups, with the
// usual silent-e adjustment. Every word counts as at least one.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	groups := vowelGroupRe.FindAllString(w, -1)
	n := len(groups)
	if n > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func readingLevel(flesch float64) string {
	switch {
	case flesch >= 90:
		return "Very Easy"
	case flesch >= 80:
		return "Easy"
	case flesch >= 70:
		return "Fairly Easy"
	case flesch >= 60:
		return "Standard"
	case flesch >= 50:
		return "Fairly Difficult"
	case flesch >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}

func gradeLevel(flesch float64) int {
	switch {
	case flesch >= 90:
		return 5
	case flesch >= 80:
		return 6
	case flesch >= 70:
		return 7
	case flesch >= 60:
		return 9
	case flesch >= 50:
		return 11
	case flesch >= 30:
		return 13
	default:
		return 16
	}
}
