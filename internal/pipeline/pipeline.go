// Package pipeline runs the full article generation flow: source extraction,
// drafting, enhancement, SEO analysis, cover image, export. Stages degrade
// independently; a failed image or export never rolls back the draft.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/enhance"
	"draftsmith/internal/export"
	"draftsmith/internal/extract"
	"draftsmith/internal/imagegen"
	"draftsmith/internal/llm"
	"draftsmith/internal/logger"
	"draftsmith/internal/promo"
	"draftsmith/internal/seo"
)

// Stage identifies a pipeline phase for progress reporting.
type Stage string

const (
	StageExtract Stage = "extract"
	StageDraft   Stage = "draft"
	StageEnhance Stage = "enhance"
	StageSEO     Stage = "seo"
	StageImage   Stage = "image"
	StageExport  Stage = "export"
)

// ProgressFunc receives stage updates as the pipeline runs.
type ProgressFunc func(stage Stage, message string)

// Runner executes generation requests end to end.
type Runner struct {
	cfg       *config.Config
	extractor *extract.Extractor
	writer    *llm.Writer
	exporter  *export.Exporter
	progress  ProgressFunc
	skipFiles bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithoutFileExports skips writing HTML/DOCX/JSON to disk. The HTTP layer
// uses this; clients receive the result as JSON instead.
func WithoutFileExports() Option {
	return func(r *Runner) { r.skipFiles = true }
}

// New builds a Runner. The LLM writer is required; image generation is
// resolved per request so a missing image credential surfaces as a
// placeholder cover, not a construction error.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	writer, err := llm.NewWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating article writer: %w", err)
	}

	r := &Runner{
		cfg:       cfg,
		extractor: extract.New(cfg),
		writer:    writer,
		exporter:  export.NewExporter(cfg.Export.Directory),
		progress:  func(Stage, string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one generation request.
func (r *Runner) Run(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	log := logger.Get()
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	result := &core.GenerationResult{Request: req}

	// Sources
	var combined core.CombinedContext
	if len(req.SourceURLs) > 0 {
		r.progress(StageExtract, fmt.Sprintf("extracting %d source URLs", len(req.SourceURLs)))
		extracted := r.extractor.ExtractAll(ctx, req.SourceURLs)
		combined = extract.Combine(extracted)
		log.Info("source extraction finished",
			"requested", len(req.SourceURLs), "usable", combined.SourceCount)
	}

	// Draft
	r.progress(StageDraft, "drafting article")
	draft := r.writer.GenerateDraft(ctx, req, combined)
	result.Draft = draft

	// Enhancement
	r.progress(StageEnhance, "applying enhancements")
	if req.InternalLinks != "" {
		links := enhance.ParseLinks(req.InternalLinks)
		inserted := enhance.InsertLinks(draft, links)
		log.Info("internal links inserted", "parsed", len(links), "inserted", inserted)
	}
	enhance.AddTransitions(draft)
	enhance.EnsureCTA(draft)
	draft.TotalWordCount = recount(draft)

	// SEO
	r.progress(StageSEO, "scoring SEO")
	result.SEO = seo.Analyze(draft)

	// Cover image. Failures here never affect the draft.
	r.progress(StageImage, "generating cover image")
	cover := r.generateCover(ctx, req, draft)
	result.Cover = &cover

	// Export
	if !r.skipFiles {
		r.progress(StageExport, "writing export files")
		paths, err := r.exporter.ExportAll(result)
		if err != nil {
			log.Warn("some exports failed", "error", err, "written", len(paths))
		}
		result.Exports = paths
	}

	log.Info("generation finished",
		"draft_id", draft.ID, "words", draft.TotalWordCount,
		"seo_score", result.SEO.Score, "placeholder_cover", cover.IsPlaceholder)
	return result, nil
}

// generateCover resolves the image engine for the request and produces the
// cover, falling back to a deterministic placeholder when no provider can be
// constructed.
func (r *Runner) generateCover(ctx context.Context, req core.GenerationRequest, draft *core.ArticleDraft) core.ImageResult {
	engine, err := imagegen.NewEngine(r.cfg, req.ImageProvider)
	if err != nil {
		logger.Get().Warn("image engine unavailable, using placeholder cover", "error", err)
		prompt := fmt.Sprintf("Blog cover illustration for an article titled %q", draft.Title)
		return core.ImageResult{
			URL:           imagegen.PlaceholderURL(prompt),
			LocalPath:     imagegen.PlaceholderURL(prompt),
			PromptUsed:    prompt,
			Provider:      "placeholder",
			Tone:          req.ImageTone,
			IsPlaceholder: true,
			Reason:        "no image provider credential configured",
			GeneratedAt:   time.Now(),
		}
	}
	return engine.GenerateCover(ctx, draft, req.ImageTone)
}

// validate rejects requests the pipeline cannot act on.
func validate(req core.GenerationRequest) error {
	if len(req.Keywords) == 0 || req.Keywords[0] == "" {
		return fmt.Errorf("at least one keyword is required")
	}
	if req.Sections < 0 || req.Sections > 12 {
		return fmt.Errorf("sections must be at most 12")
	}
	if req.PromotionalStyle != "" && !promo.ValidStyle(req.PromotionalStyle) {
		return fmt.Errorf("unknown promotional style %q", req.PromotionalStyle)
	}
	if req.Promotion != "" {
		if _, ok := promo.Lookup(req.Promotion); !ok {
			return fmt.Errorf("unknown promotion %q", req.Promotion)
		}
	}
	return nil
}

func recount(draft *core.ArticleDraft) int {
	n := 0
	for i := range draft.Sections {
		draft.Sections[i].WordCount = wordCount(draft.Sections[i].Content)
		n += draft.Sections[i].WordCount
	}
	return n
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
