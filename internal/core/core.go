package core

import "time"

// GenerationRequest carries every option for one article generation run.
// It is built by the CLI or HTTP layer and passed explicitly through the
// pipeline; nothing in the pipeline reads ambient state.
type GenerationRequest struct {
	Keywords         []string  `json:"keywords"`          // Target keywords, first one is primary
	SourceURLs       []string  `json:"source_urls"`       // Optional URLs to extract source material from
	Language         string    `json:"language"`          // Output language (e.g. "English")
	Tone             string    `json:"tone"`              // Writing tone profile name
	Focus            string    `json:"focus"`             // Optional focus angle for the article
	Sections         int       `json:"sections"`          // Exact number of ## sections to request
	WordTarget       int       `json:"word_target"`       // Approximate total word count target
	Promotion        string    `json:"promotion"`         // Selected promotional project name (empty = none)
	PromotionalStyle string    `json:"promotional_style"` // "No Promotion", "CTA only", "Full Section + CTA"
	ExternalLinks    string    `json:"external_links"`    // Newline-separated "url - description" entries
	InternalLinks    string    `json:"internal_links"`    // "Text: /url" entries for link insertion
	ImageTone        string    `json:"image_tone"`        // Tone label for cover image styling
	ImageProvider    string    `json:"image_provider"`    // "openai" or "seedream"
	RequestedAt      time.Time `json:"requested_at"`
}

// Section is one heading+body unit of a generated article, delimited by a
// "## " marker in the raw model reply.
type Section struct {
	Heading   string   `json:"heading"`
	Content   string   `json:"content"`
	Keywords  []string `json:"keywords"`
	WordCount int      `json:"word_count"`
}

// ArticleDraft is the structured article produced by the LLM engine. The
// enhancement step mutates section content in place; everything else is
// read-only after parsing. The section list is never empty.
type ArticleDraft struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	SEOTitle        string    `json:"seo_title"`
	MetaDescription string    `json:"meta_description"`
	Slug            string    `json:"slug"`
	Sections        []Section `json:"sections"`
	CTA             string    `json:"cta"`
	TotalWordCount  int       `json:"total_word_count"`
	FocusKeywords   []string  `json:"focus_keywords"`
	Language        string    `json:"language"`
	Tone            string    `json:"tone"`
	ModelUsed       string    `json:"model_used"`
	RawContent      string    `json:"raw_content"`
	DateGenerated   time.Time `json:"date_generated"`
}

// PrimaryKeyword returns the first focus keyword, or a generic fallback.
func (a *ArticleDraft) PrimaryKeyword() string {
	if len(a.FocusKeywords) > 0 {
		return a.FocusKeywords[0]
	}
	return "topic"
}

// ImageResult is one generated (or placeholder) image. Immutable once
// created; URL is always non-empty, pointing at either the provider's
// image or a deterministic placeholder.
type ImageResult struct {
	URL           string    `json:"url"`
	LocalPath     string    `json:"local_path"`     // Best-effort disk cache; equals URL when caching failed
	PromptUsed    string    `json:"prompt_used"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	Caption       string    `json:"caption"`
	AltText       string    `json:"alt_text"`
	Tone          string    `json:"tone"`
	IsPlaceholder bool      `json:"is_placeholder"`
	Reason        string    `json:"reason,omitempty"` // Human-readable failure reason when placeholder
	GeneratedAt   time.Time `json:"generated_at"`
}

// ExtractedContent is the cleaned result of pulling one URL.
type ExtractedContent struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headings        []Heading `json:"headings"`
	MainContent     string    `json:"main_content"`
	Keywords        []string  `json:"keywords"`
	Links           []string  `json:"links,omitempty"`
	Method          string    `json:"extraction_method"` // "reader_api", "readability", "selectors", "failed"
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
}

// Heading is one document heading captured during extraction.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// CombinedContext merges several extractions into one LLM context blob.
type CombinedContext struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	SourceCount int      `json:"source_count"`
	Keywords    []string `json:"keywords"`
}

// SEOReport holds derived, read-only metrics for one draft. It has no
// identity or lifecycle beyond the request that produced it.
type SEOReport struct {
	FocusKeyword    string              `json:"focus_keyword"`
	TargetKeywords  []string            `json:"target_keywords"`
	Keywords        KeywordAnalysis     `json:"keyword_analysis"`
	Readability     ReadabilityAnalysis `json:"readability_analysis"`
	Title           FieldAnalysis       `json:"title_analysis"`
	Meta            FieldAnalysis       `json:"meta_analysis"`
	Structure       StructureAnalysis   `json:"content_structure"`
	Score           int                 `json:"seo_score"` // 0-100
	Recommendations []string            `json:"recommendations"`
	LSISuggestions  []string            `json:"lsi_suggestions"`
	Links           []LinkRef           `json:"links"`
	GeneratedAt     time.Time           `json:"optimization_date"`
}

// KeywordAnalysis summarizes keyword usage across the draft.
type KeywordAnalysis struct {
	TotalWords     int                       `json:"total_words"`
	PrimaryKeyword string                    `json:"primary_keyword"`
	PrimaryCount   int                       `json:"primary_count"`
	PrimaryDensity float64                   `json:"primary_density"` // Percent
	Distribution   map[string]KeywordMetrics `json:"keyword_distribution"`
	Missing        []string                  `json:"missing_keywords"`
	Overused       []string                  `json:"overused_keywords"`
}

// KeywordMetrics is the per-keyword slice of the analysis.
type KeywordMetrics struct {
	Count     int      `json:"count"`
	Density   float64  `json:"density"`
	Positions []string `json:"positions"` // "introduction", "heading", "conclusion"
}

// ReadabilityAnalysis carries the Flesch approximation and its inputs.
type ReadabilityAnalysis struct {
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
	SyllableCount    int     `json:"syllable_count"`
	AvgSentenceLen   float64 `json:"avg_sentence_length"`
	AvgSyllablesWord float64 `json:"avg_syllables_per_word"`
	FleschScore      float64 `json:"flesch_score"`
	ReadingLevel     string  `json:"reading_level"`
	GradeLevel       int     `json:"readability_grade"`
}

// FieldAnalysis covers a single text field (title or meta description).
type FieldAnalysis struct {
	Text            string   `json:"text"`
	Length          int      `json:"length"`
	OptimalLength   bool     `json:"optimal_length"`
	ContainsKeyword bool     `json:"contains_primary_keyword"`
	KeywordPosition string   `json:"keyword_position,omitempty"` // "beginning", "middle", "end"
	Recommendations []string `json:"recommendations"`
}

// StructureAnalysis describes section layout and balance.
type StructureAnalysis struct {
	TotalSections  int    `json:"total_sections"`
	SectionLengths []int  `json:"section_lengths"`
	Balance        string `json:"content_balance"` // "good", "uneven", "too_short", "sections_too_long"
}

// LinkRef is one hyperlink discovered in the draft body.
type LinkRef struct {
	URL  string `json:"url"`
	Text string `json:"text"`
	Type string `json:"type"` // "internal" or "external"
}

// GenerationResult bundles everything one pipeline run produces.
type GenerationResult struct {
	Request GenerationRequest `json:"request"`
	Draft   *ArticleDraft     `json:"draft"`
	SEO     *SEOReport        `json:"seo"`
	Cover   *ImageResult      `json:"cover,omitempty"`
	Exports map[string]string `json:"exports,omitempty"` // Format name -> file path
}
