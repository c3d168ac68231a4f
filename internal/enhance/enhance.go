// Package enhance applies deterministic post-draft edits: internal link
// insertion, section transitions, and a closing call to action. Everything
// here is plain string work so results are reproducible.
package enhance

import (
	"fmt"
	"regexp"
	"strings"

	"draftsmith/internal/core"
	"draftsmith/internal/llm"
)

// maxLinksPerSection caps how many links insertion may add to one section.
const maxLinksPerSection = 2

// Link is one internal link candidate parsed from user input.
type Link struct {
	Text string
	URL  string
}

var linkEntryRe = regexp.MustCompile(`^\s*(.+?)\s*:\s*(/\S+)\s*$`)

// ParseLinks parses "Anchor text: /url" entries separated by newlines or
// commas. Malformed entries are skipped.
func ParseLinks(input string) []Link {
	var links []Link
	for _, chunk := range strings.FieldsFunc(input, func(r rune) bool { return r == '\n' || r == ',' }) {
		m := linkEntryRe.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		links = append(links, Link{Text: m[1], URL: m[2]})
	}
	return links
}

// InsertLinks weaves parsed links into the draft sections, at most two per
// section. Each link is used once: exact anchor-text match first, then a
// word-overlap fallback. Text already inside a markdown link is never
// wrapped again. Returns how many links were inserted.
func InsertLinks(draft *core.ArticleDraft, links []Link) int {
	inserted := 0
	used := make([]bool, len(links))

	for si := range draft.Sections {
		count := 0
		for li, link := range links {
			if count >= maxLinksPerSection {
				break
			}
			if used[li] {
				continue
			}
			content, ok := insertLink(draft.Sections[si].Content, link)
			if !ok {
				continue
			}
			draft.Sections[si].Content = content
			draft.Sections[si].WordCount = len(strings.Fields(content))
			used[li] = true
			count++
			inserted++
		}
	}
	return inserted
}

// insertLink tries to place one link into the content, returning the edited
// content and whether a placement happened.
func insertLink(content string, link Link) (string, bool) {
	if out, ok := insertExact(content, link); ok {
		return out, true
	}
	return insertByOverlap(content, link)
}

// insertExact wraps the first case-insensitive occurrence of the anchor text
// that is not already part of a markdown link.
func insertExact(content string, link Link) (string, bool) {
	lower := strings.ToLower(content)
	target := strings.ToLower(link.Text)

	from := 0
	for {
		idx := strings.Index(lower[from:], target)
		if idx < 0 {
			return content, false
		}
		idx += from
		if insideMarkdownLink(content, idx) {
			from = idx + len(target)
			continue
		}
		original := content[idx : idx+len(link.Text)]
		return content[:idx] + fmt.Sprintf("[%s](%s)", original, link.URL) + content[idx+len(link.Text):], true
	}
}

// insertByOverlap finds the first sentence sharing at least half the anchor's
// words and appends the link as a parenthetical reference.
func insertByOverlap(content string, link Link) (string, bool) {
	anchorWords := significantWords(link.Text)
	if len(anchorWords) == 0 {
		return content, false
	}

	sentences := splitSentences(content)
	offset := 0
	for _, sentence := range sentences {
		idx := strings.Index(content[offset:], sentence)
		if idx < 0 {
			continue
		}
		idx += offset
		offset = idx + len(sentence)

		if strings.Contains(sentence, "](") {
			continue
		}

		overlap := 0
		sentenceLower := strings.ToLower(sentence)
		for _, w := range anchorWords {
			if strings.Contains(sentenceLower, w) {
				overlap++
			}
		}
		if overlap*2 < len(anchorWords) {
			continue
		}

		ref := fmt.Sprintf(" (see [%s](%s))", link.Text, link.URL)
		end := idx + len(sentence)
		// Insert before the sentence terminator.
		insertAt := end
		if end > 0 && (content[end-1] == '.' || content[end-1] == '!' || content[end-1] == '?') {
			insertAt = end - 1
		}
		return content[:insertAt] + ref + content[insertAt:], true
	}
	return content, false
}

// insideMarkdownLink reports whether the byte position sits inside [..](..)
// syntax.
func insideMarkdownLink(content string, pos int) bool {
	// Inside the anchor text: an unclosed "[" before pos whose "](" comes
	// at or after pos.
	open := strings.LastIndex(content[:pos], "[")
	if open >= 0 {
		mid := strings.Index(content[open:], "](")
		if mid >= 0 && open+mid >= pos {
			return true
		}
	}
	// Inside the URL part: "](" before pos without a ")" in between.
	mid := strings.LastIndex(content[:pos], "](")
	if mid >= 0 && !strings.Contains(content[mid:pos], ")") {
		return true
	}
	return false
}

var sentenceSplitRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

func splitSentences(content string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.FindAllString(content, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

var smallWords = map[string]bool{
	"the": true, "and": true, "for": true, "our": true, "your": true,
	"with": true, "how": true, "what": true, "guide": true, "a": true, "to": true,
}

func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?:;")
		if len(w) > 2 && !smallWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// transitions are openers prepended to middle sections that start abruptly.
var transitions = []string{
	"Beyond that, ",
	"With that in place, ",
	"Building on this, ",
	"Just as important, ",
}

// AddTransitions prepends a connective opener to middle sections whose first
// sentence does not already start with one. Selection is positional, so the
// same draft always gets the same transitions.
func AddTransitions(draft *core.ArticleDraft) {
	for i := 1; i < len(draft.Sections)-1; i++ {
		content := draft.Sections[i].Content
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || startsWithTransition(trimmed) {
			continue
		}
		t := transitions[(i-1)%len(transitions)]
		// Lower-case the old opening word unless it looks like a proper noun
		// or acronym.
		rest := trimmed
		if first := strings.Fields(trimmed); len(first) > 0 {
			w := first[0]
			if len(w) > 1 && w[1:] == strings.ToLower(w[1:]) {
				rest = strings.ToLower(w[:1]) + trimmed[1:]
			}
		}
		draft.Sections[i].Content = t + rest
		draft.Sections[i].WordCount = len(strings.Fields(draft.Sections[i].Content))
	}
}

func startsWithTransition(s string) bool {
	for _, t := range transitions {
		if strings.HasPrefix(s, t) {
			return true
		}
	}
	return false
}

// EnsureCTA fills in a closing call to action when the draft has none.
func EnsureCTA(draft *core.ArticleDraft) {
	if strings.TrimSpace(draft.CTA) == "" {
		draft.CTA = llm.SelectCTA(draft.Title)
	}
}
