package llm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"draftsmith/internal/core"
	"draftsmith/internal/seo"
)

const (
	metaMinLen = 80
	metaMaxLen = 500
	metaIdeal  = 160
)

// ParseDraft turns a raw model reply into a structured draft. The section
// list in the result is never empty: replies without "## " markers become a
// single section holding the whole body.
func ParseDraft(raw string, req core.GenerationRequest) (*core.ArticleDraft, error) {
	raw = stripCodeFence(raw)
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty model reply")
	}

	title := extractTitle(raw, req)
	meta := extractMetaDescription(raw)
	sections := splitSections(raw, title)

	if req.Sections > 0 && len(sections) > req.Sections {
		sections = foldExcessSections(sections, req.Sections)
	}

	for i := range sections {
		sections[i].Keywords = req.Keywords
		sections[i].WordCount = len(strings.Fields(sections[i].Content))
	}

	if meta == "" {
		meta = synthesizeMeta(sections)
	}

	draft := &core.ArticleDraft{
		ID:              uuid.New().String(),
		Title:           title,
		SEOTitle:        seoTitle(title),
		MetaDescription: meta,
		Slug:            seo.Slugify(title),
		Sections:        sections,
		CTA:             SelectCTA(title),
		FocusKeywords:   req.Keywords,
		Language:        req.Language,
		Tone:            req.Tone,
		RawContent:      raw,
		DateGenerated:   req.RequestedAt,
	}
	draft.TotalWordCount = totalWords(draft)
	return draft, nil
}

// stripCodeFence removes a wrapping ```...``` fence if the whole reply is
// inside one.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return s
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		return strings.Join(lines[1:len(lines)-1], "\n")
	}
	return s
}

func extractTitle(raw string, req core.GenerationRequest) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return cleanInlineMarkdown(strings.TrimPrefix(line, "# "))
		}
	}
	// No "# " line: first non-empty, non-section line.
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return cleanInlineMarkdown(line)
		}
	}
	if len(req.Keywords) > 0 {
		return titleCase(req.Keywords[0])
	}
	return "Untitled Article"
}

// extractMetaDescription finds the first non-heading paragraph of plausible
// meta-description length, then trims it to the ideal length on a word
// boundary.
func extractMetaDescription(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		clean := cleanInlineMarkdown(line)
		if len(clean) >= metaMinLen && len(clean) <= metaMaxLen {
			if len(clean) > metaIdeal {
				cut := clean[:metaIdeal-3]
				if idx := strings.LastIndex(cut, " "); idx > metaIdeal/2 {
					cut = cut[:idx]
				}
				clean = cut + "..."
			}
			return clean
		}
	}
	return ""
}

func synthesizeMeta(sections []core.Section) string {
	if len(sections) == 0 {
		return ""
	}
	text := cleanInlineMarkdown(strings.TrimSpace(sections[0].Content))
	if len(text) > metaIdeal {
		cut := text[:metaIdeal-3]
		if idx := strings.LastIndex(cut, " "); idx > metaIdeal/2 {
			cut = cut[:idx]
		}
		text = cut + "..."
	}
	return text
}

// splitSections splits the reply body on "## " markers. The preamble before
// the first marker (title, meta paragraph) is discarded.
func splitSections(raw, title string) []core.Section {
	var sections []core.Section

	lines := strings.Split(raw, "\n")
	var current *core.Section
	var body []string

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
		body = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = &core.Section{Heading: cleanInlineMarkdown(strings.TrimPrefix(trimmed, "## "))}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	if len(sections) == 0 {
		// No markers at all: the whole body becomes one section.
		content := raw
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "# ") {
				content = strings.Replace(content, line, "", 1)
				break
			}
		}
		heading := title
		if heading == "" {
			heading = "Overview"
		}
		sections = append(sections, core.Section{
			Heading: heading,
			Content: strings.TrimSpace(content),
		})
	}

	return sections
}

// foldExcessSections keeps the first max sections and folds the overflow
// content into the last kept one, so no generated text is lost.
func foldExcessSections(sections []core.Section, max int) []core.Section {
	kept := sections[:max]
	var extra []string
	for _, s := range sections[max:] {
		extra = append(extra, s.Heading+"\n\n"+s.Content)
	}
	last := &kept[max-1]
	last.Content = strings.TrimSpace(last.Content + "\n\n" + strings.Join(extra, "\n\n"))
	return kept
}

// cleanInlineMarkdown strips bold/italic/code markers and link syntax from a
// single line.
func cleanInlineMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	// [text](url) -> text
	for {
		open := strings.Index(s, "[")
		mid := strings.Index(s, "](")
		if open == -1 || mid == -1 || mid < open {
			break
		}
		end := strings.Index(s[mid:], ")")
		if end == -1 {
			break
		}
		s = s[:open] + s[open+1:mid] + s[mid+end+1:]
	}
	return strings.TrimSpace(s)
}
