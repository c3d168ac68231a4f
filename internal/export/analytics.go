package export

import (
	"encoding/json"
	"time"

	"draftsmith/internal/core"
)

// AnalyticsReport is the machine-readable companion to an export: everything
// a content dashboard needs without re-parsing the article.
type AnalyticsReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Generation  GenerationMeta    `json:"generation"`
	Content     ContentMetrics    `json:"content_metrics"`
	SEO         SEOMetrics        `json:"seo_metrics"`
	Links       LinkMetrics       `json:"link_analysis"`
	Image       *ImageMeta        `json:"image,omitempty"`
	Readiness   PublicationStatus `json:"publication_readiness"`
}

// GenerationMeta records how the article was produced.
type GenerationMeta struct {
	DraftID       string   `json:"draft_id"`
	Model         string   `json:"model"`
	Language      string   `json:"language"`
	Tone          string   `json:"tone"`
	Keywords      []string `json:"keywords"`
	SourceURLs    []string `json:"source_urls,omitempty"`
	Promotion     string   `json:"promotion,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}

// ContentMetrics summarizes the article body.
type ContentMetrics struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	TotalWords      int     `json:"total_words"`
	SectionCount    int     `json:"section_count"`
	ReadMinutes     int     `json:"read_minutes"`
	AvgSectionWords int     `json:"avg_section_words"`
	FleschScore     float64 `json:"flesch_score"`
	ReadingLevel    string  `json:"reading_level"`
}

// SEOMetrics carries the score and its drivers.
type SEOMetrics struct {
	Score           int      `json:"score"`
	PrimaryKeyword  string   `json:"primary_keyword"`
	PrimaryDensity  float64  `json:"primary_density"`
	TitleOptimal    bool     `json:"title_length_optimal"`
	MetaOptimal     bool     `json:"meta_length_optimal"`
	MissingKeywords []string `json:"missing_keywords,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	LSISuggestions  []string `json:"lsi_suggestions,omitempty"`
}

// LinkMetrics counts hyperlinks by type.
type LinkMetrics struct {
	Total    int            `json:"total"`
	Internal int            `json:"internal"`
	External int            `json:"external"`
	Links    []core.LinkRef `json:"links,omitempty"`
}

// ImageMeta describes the cover image outcome.
type ImageMeta struct {
	Provider      string `json:"provider"`
	Model         string `json:"model,omitempty"`
	IsPlaceholder bool   `json:"is_placeholder"`
	Reason        string `json:"reason,omitempty"`
	URL           string `json:"url"`
}

// PublicationStatus is a coarse go/no-go verdict with blocking issues.
type PublicationStatus struct {
	Ready  bool     `json:"ready"`
	Issues []string `json:"issues,omitempty"`
}

// BuildAnalytics assembles the report from a pipeline result.
func BuildAnalytics(result *core.GenerationResult) *AnalyticsReport {
	draft := result.Draft
	seoReport := result.SEO

	report := &AnalyticsReport{
		GeneratedAt: time.Now(),
		Generation: GenerationMeta{
			DraftID:     draft.ID,
			Model:       draft.ModelUsed,
			Language:    draft.Language,
			Tone:        draft.Tone,
			Keywords:    draft.FocusKeywords,
			SourceURLs:  result.Request.SourceURLs,
			Promotion:   result.Request.Promotion,
			RequestedAt: result.Request.RequestedAt,
		},
		Content: ContentMetrics{
			Title:        draft.Title,
			Slug:         draft.Slug,
			TotalWords:   draft.TotalWordCount,
			SectionCount: len(draft.Sections),
		},
	}

	if n := len(draft.Sections); n > 0 {
		report.Content.AvgSectionWords = draft.TotalWordCount / n
	}
	report.Content.ReadMinutes = draft.TotalWordCount / 200
	if report.Content.ReadMinutes < 1 {
		report.Content.ReadMinutes = 1
	}

	if seoReport != nil {
		report.Content.FleschScore = seoReport.Readability.FleschScore
		report.Content.ReadingLevel = seoReport.Readability.ReadingLevel
		report.SEO = SEOMetrics{
			Score:           seoReport.Score,
			PrimaryKeyword:  seoReport.FocusKeyword,
			PrimaryDensity:  seoReport.Keywords.PrimaryDensity,
			TitleOptimal:    seoReport.Title.OptimalLength,
			MetaOptimal:     seoReport.Meta.OptimalLength,
			MissingKeywords: seoReport.Keywords.Missing,
			Recommendations: seoReport.Recommendations,
			LSISuggestions:  seoReport.LSISuggestions,
		}
		for _, l := range seoReport.Links {
			report.Links.Total++
			if l.Type == "internal" {
				report.Links.Internal++
			} else {
				report.Links.External++
			}
		}
		report.Links.Links = seoReport.Links
	}

	if result.Cover != nil {
		report.Image = &ImageMeta{
			Provider:      result.Cover.Provider,
			Model:         result.Cover.Model,
			IsPlaceholder: result.Cover.IsPlaceholder,
			Reason:        result.Cover.Reason,
			URL:           result.Cover.URL,
		}
	}

	report.Readiness = assessReadiness(report)
	return report
}

// assessReadiness flags the issues an editor must resolve before publishing.
func assessReadiness(r *AnalyticsReport) PublicationStatus {
	var issues []string
	if r.Content.TotalWords < 300 {
		issues = append(issues, "article is under 300 words")
	}
	if r.SEO.Score > 0 && r.SEO.Score < 50 {
		issues = append(issues, "SEO score below 50")
	}
	if r.Image != nil && r.Image.IsPlaceholder {
		issues = append(issues, "cover image is a placeholder")
	}
	if len(r.SEO.MissingKeywords) > 0 {
		issues = append(issues, "target keywords missing from the article")
	}
	return PublicationStatus{Ready: len(issues) == 0, Issues: issues}
}

// MarshalAnalytics renders the report as indented JSON.
func MarshalAnalytics(report *AnalyticsReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
