// Package seo scores article drafts with deterministic string analysis:
// keyword density, Flesch readability, title/meta length checks, and section
// balance. No model calls; the same draft always gets the same score.
package seo

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"draftsmith/internal/core"
)

// Scoring weights. They sum to 100.
const (
	titleWeight       = 20
	metaWeight        = 15
	keywordWeight     = 25
	readabilityWeight = 20
	structureWeight   = 20
)

// Optimal ranges used throughout the checks.
const (
	titleOptimalMin   = 50
	titleOptimalMax   = 60
	metaOptimalMin    = 150
	metaOptimalMax    = 160
	densityOptimalMin = 1.0
	densityOptimalMax = 2.5
	maxRecommendations = 8
)

// Analyze produces the full SEO report for a draft.
func Analyze(draft *core.ArticleDraft) *core.SEOReport {
	body := draftBody(draft)
	primary := draft.PrimaryKeyword()

	report := &core.SEOReport{
		FocusKeyword:   primary,
		TargetKeywords: draft.FocusKeywords,
		Keywords:       analyzeKeywords(draft, body),
		Readability:    AnalyzeReadability(body),
		Title:          analyzeTitle(draft.Title, primary),
		Meta:           analyzeMeta(draft.MetaDescription, primary),
		Structure:      analyzeStructure(draft),
		Links:          findLinks(body),
		LSISuggestions: LSISuggestions(primary),
		GeneratedAt:    time.Now(),
	}
	report.Score = score(report)
	report.Recommendations = recommendations(report)
	return report
}

// draftBody concatenates headings and section content for text analysis.
func draftBody(draft *core.ArticleDraft) string {
	var b strings.Builder
	for _, s := range draft.Sections {
		b.WriteString(s.Heading)
		b.WriteString("\n")
		b.WriteString(s.Content)
		b.WriteString("\n\n")
	}
	if draft.CTA != "" {
		b.WriteString(draft.CTA)
	}
	return b.String()
}

func analyzeKeywords(draft *core.ArticleDraft, body string) core.KeywordAnalysis {
	lower := strings.ToLower(body)
	words := Words(body)
	total := len(words)

	analysis := core.KeywordAnalysis{
		TotalWords:     total,
		PrimaryKeyword: draft.PrimaryKeyword(),
		Distribution:   map[string]core.KeywordMetrics{},
	}

	intro, conclusion := "", ""
	if n := len(draft.Sections); n > 0 {
		intro = strings.ToLower(draft.Sections[0].Content)
		conclusion = strings.ToLower(draft.Sections[n-1].Content + " " + draft.CTA)
	}
	headings := strings.ToLower(draft.Title)
	for _, s := range draft.Sections {
		headings += " " + strings.ToLower(s.Heading)
	}

	for _, kw := range draft.FocusKeywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		count := strings.Count(lower, k)
		density := 0.0
		if total > 0 {
			density = float64(count*wordsIn(k)) / float64(total) * 100
		}

		var positions []string
		if strings.Contains(intro, k) {
			positions = append(positions, "introduction")
		}
		if strings.Contains(headings, k) {
			positions = append(positions, "heading")
		}
		if strings.Contains(conclusion, k) {
			positions = append(positions, "conclusion")
		}

		analysis.Distribution[kw] = core.KeywordMetrics{
			Count:     count,
			Density:   round2(density),
			Positions: positions,
		}

		if count == 0 {
			analysis.Missing = append(analysis.Missing, kw)
		} else if density > densityOptimalMax*2 {
			analysis.Overused = append(analysis.Overused, kw)
		}

		if strings.EqualFold(kw, analysis.PrimaryKeyword) {
			analysis.PrimaryCount = count
			analysis.PrimaryDensity = round2(density)
		}
	}

	return analysis
}

func analyzeTitle(title, primary string) core.FieldAnalysis {
	analysis := core.FieldAnalysis{
		Text:            title,
		Length:          len(title),
		OptimalLength:   len(title) >= titleOptimalMin && len(title) <= titleOptimalMax,
		ContainsKeyword: containsFold(title, primary),
	}
	if analysis.ContainsKeyword {
		analysis.KeywordPosition = keywordPosition(title, primary)
	}

	if len(title) < titleOptimalMin {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Title is %d characters; aim for %d-%d", len(title), titleOptimalMin, titleOptimalMax))
	} else if len(title) > titleOptimalMax {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Title is %d characters and may be cut off in search results; aim for %d-%d", len(title), titleOptimalMin, titleOptimalMax))
	}
	if !analysis.ContainsKeyword {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Add the primary keyword %q to the title", primary))
	} else if analysis.KeywordPosition == "end" {
		analysis.Recommendations = append(analysis.Recommendations,
			"Move the primary keyword closer to the start of the title")
	}
	return analysis
}

func analyzeMeta(meta, primary string) core.FieldAnalysis {
	analysis := core.FieldAnalysis{
		Text:            meta,
		Length:          len(meta),
		OptimalLength:   len(meta) >= metaOptimalMin && len(meta) <= metaOptimalMax,
		ContainsKeyword: containsFold(meta, primary),
	}
	if analysis.ContainsKeyword {
		analysis.KeywordPosition = keywordPosition(meta, primary)
	}

	if len(meta) == 0 {
		analysis.Recommendations = append(analysis.Recommendations, "Write a meta description")
	} else if len(meta) < metaOptimalMin {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Meta description is %d characters; aim for %d-%d", len(meta), metaOptimalMin, metaOptimalMax))
	} else if len(meta) > metaOptimalMax {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Meta description is %d characters and will be truncated; aim for %d-%d", len(meta), metaOptimalMin, metaOptimalMax))
	}
	if !analysis.ContainsKeyword {
		analysis.Recommendations = append(analysis.Recommendations,
			fmt.Sprintf("Include the primary keyword %q in the meta description", primary))
	}
	return analysis
}

func analyzeStructure(draft *core.ArticleDraft) core.StructureAnalysis {
	analysis := core.StructureAnalysis{
		TotalSections: len(draft.Sections),
	}
	minLen, maxLen := 0, 0
	for i, s := range draft.Sections {
		n := s.WordCount
		if n == 0 {
			n = len(Words(s.Content))
		}
		analysis.SectionLengths = append(analysis.SectionLengths, n)
		if i == 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}

	switch {
	case maxLen < 50:
		analysis.Balance = "too_short"
	case maxLen > 600:
		analysis.Balance = "sections_too_long"
	case minLen > 0 && float64(maxLen)/float64(minLen) > 3.0:
		analysis.Balance = "uneven"
	default:
		analysis.Balance = "good"
	}
	return analysis
}

// score combines the five weighted components into a 0-100 value.
func score(r *core.SEOReport) int {
	total := 0.0

	// Title: optimal length is worth half, keyword presence the other half.
	titleScore := 0.0
	if r.Title.OptimalLength {
		titleScore += 0.5
	} else if r.Title.Length > 0 {
		titleScore += 0.25
	}
	if r.Title.ContainsKeyword {
		titleScore += 0.5
	}
	total += titleScore * titleWeight

	metaScore := 0.0
	if r.Meta.OptimalLength {
		metaScore += 0.5
	} else if r.Meta.Length > 0 {
		metaScore += 0.25
	}
	if r.Meta.ContainsKeyword {
		metaScore += 0.5
	}
	total += metaScore * metaWeight

	// Keywords: primary density in the optimal band scores fully.
	kwScore := 0.0
	switch d := r.Keywords.PrimaryDensity; {
	case d >= densityOptimalMin && d <= densityOptimalMax:
		kwScore = 1.0
	case d > 0:
		kwScore = 0.5
	}
	if len(r.Keywords.Missing) > 0 && len(r.TargetKeywords) > 0 {
		kwScore *= 1 - float64(len(r.Keywords.Missing))/float64(len(r.TargetKeywords))/2
	}
	total += kwScore * keywordWeight

	// Readability: 60-80 Flesch is the sweet spot for marketing copy.
	readScore := 0.0
	switch f := r.Readability.FleschScore; {
	case f >= 60 && f <= 80:
		readScore = 1.0
	case f >= 40:
		readScore = 0.7
	case f > 0:
		readScore = 0.4
	}
	total += readScore * readabilityWeight

	structScore := 0.0
	switch r.Structure.Balance {
	case "good":
		structScore = 1.0
	case "uneven":
		structScore = 0.6
	default:
		structScore = 0.3
	}
	if r.Structure.TotalSections < 3 {
		structScore *= 0.7
	}
	total += structScore * structureWeight

	score := int(total + 0.5)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// recommendations flattens per-field advice into a prioritized list, capped
// so the report stays actionable.
func recommendations(r *core.SEOReport) []string {
	var recs []string
	recs = append(recs, r.Title.Recommendations...)
	recs = append(recs, r.Meta.Recommendations...)

	if d := r.Keywords.PrimaryDensity; d < densityOptimalMin && r.Keywords.TotalWords > 0 {
		recs = append(recs, fmt.Sprintf("Primary keyword density is %.1f%%; work it in more often (target %.1f-%.1f%%)",
			d, densityOptimalMin, densityOptimalMax))
	} else if d > densityOptimalMax {
		recs = append(recs, fmt.Sprintf("Primary keyword density is %.1f%%; reduce repetition (target %.1f-%.1f%%)",
			d, densityOptimalMin, densityOptimalMax))
	}
	for _, kw := range r.Keywords.Missing {
		recs = append(recs, fmt.Sprintf("Target keyword %q does not appear in the article", kw))
	}

	if r.Readability.FleschScore < 50 && r.Readability.WordCount > 0 {
		recs = append(recs, "Shorten sentences and prefer simpler words to improve readability")
	}

	switch r.Structure.Balance {
	case "uneven":
		recs = append(recs, "Section lengths vary widely; balance them for easier scanning")
	case "sections_too_long":
		recs = append(recs, "Break long sections into smaller ones with descriptive headings")
	case "too_short":
		recs = append(recs, "Sections are thin; expand each to at least 100 words")
	}

	if len(r.Links) == 0 {
		recs = append(recs, "Add internal or external links to support your claims")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// lsiMap holds related-term suggestions for common marketing topics. Lookup
// is by substring so "email marketing tips" matches "email marketing".
var lsiMap = map[string][]string{
	"email marketing": {"open rate", "email automation", "drip campaign", "subscriber list", "deliverability"},
	"content marketing": {"content strategy", "editorial calendar", "evergreen content", "content distribution"},
	"seo": {"search intent", "backlinks", "organic traffic", "keyword research", "SERP"},
	"social media": {"engagement rate", "social proof", "influencer", "community management"},
	"automation": {"workflow", "integration", "trigger", "no-code", "productivity"},
	"marketing": {"conversion rate", "customer journey", "funnel", "audience segmentation", "brand awareness"},
}

// LSISuggestions returns semantically related terms for a keyword, or a
// generic marketing set when the topic is unknown.
func LSISuggestions(keyword string) []string {
	k := strings.ToLower(keyword)

	var topics []string
	for topic := range lsiMap {
		if strings.Contains(k, topic) {
			topics = append(topics, topic)
		}
	}
	// Longest match wins so "email marketing" beats "marketing".
	sort.Slice(topics, func(i, j int) bool { return len(topics[i]) > len(topics[j]) })

	if len(topics) > 0 {
		return lsiMap[topics[0]]
	}
	return lsiMap["marketing"]
}

var markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// findLinks extracts markdown links from the body and classifies them.
func findLinks(body string) []core.LinkRef {
	var links []core.LinkRef
	for _, m := range markdownLinkRe.FindAllStringSubmatch(body, -1) {
		linkType := "internal"
		if strings.HasPrefix(m[2], "http://") || strings.HasPrefix(m[2], "https://") {
			linkType = "external"
		}
		links = append(links, core.LinkRef{Text: m[1], URL: m[2], Type: linkType})
	}
	return links
}

var slugInvalidRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a URL-safe slug.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = slug[:80]
		if idx := strings.LastIndex(slug, "-"); idx > 40 {
			slug = slug[:idx]
		}
	}
	if slug == "" {
		slug = "article"
	}
	return slug
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// keywordPosition classifies where a keyword appears in a short field.
func keywordPosition(s, keyword string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(keyword))
	if idx < 0 || len(s) == 0 {
		return ""
	}
	switch ratio := float64(idx) / float64(len(s)); {
	case ratio < 0.34:
		return "beginning"
	case ratio < 0.67:
		return "middle"
	default:
		return "end"
	}
}

func wordsIn(s string) int {
	return len(strings.Fields(s))
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
