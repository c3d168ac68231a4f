// Package llm drafts marketing articles through the OpenAI chat completions
// API and parses the replies into structured drafts. Generation always
// produces a usable draft: when the model call or parsing fails, a canned
// fallback article is returned instead of an error.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/logger"
	"draftsmith/internal/promo"
	"draftsmith/internal/seo"
)

// Completer is the single LLM operation the writer depends on. Tests inject
// a fake; production uses the OpenAI chat completions client.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient implements Completer with the official openai-go SDK.
type OpenAIClient struct {
	model     string
	maxTokens int
	opts      []option.RequestOption
}

// NewOpenAIClient builds a chat client from configuration. It fails when no
// usable API key is configured.
func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	if !cfg.OpenAIKeyUsable() {
		return nil, fmt.Errorf("openai api key missing: set OPENAI_API_KEY")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AI.OpenAI.APIKey),
		option.WithRequestTimeout(cfg.OpenAITimeout()),
	}
	if cfg.AI.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AI.OpenAI.BaseURL))
	}
	return &OpenAIClient{
		model:     cfg.AI.OpenAI.Model,
		maxTokens: cfg.AI.OpenAI.MaxTokens,
		opts:      opts,
	}, nil
}

// Complete sends one system+user exchange and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Writer turns generation requests into article drafts.
type Writer struct {
	completer Completer
	model     string
}

// NewWriter creates a Writer backed by the OpenAI client. When no usable API
// key is configured the Writer still works: every generation degrades to the
// canned fallback article.
func NewWriter(cfg *config.Config) (*Writer, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		logger.Warn("LLM unavailable, drafts will use the fallback article", "reason", err.Error())
		return &Writer{completer: unavailableCompleter{err: err}, model: cfg.AI.OpenAI.Model}, nil
	}
	return &Writer{completer: client, model: cfg.AI.OpenAI.Model}, nil
}

// unavailableCompleter stands in when no API key is configured. Every call
// fails, so GenerateDraft degrades to the fallback article and IntegrateLinks
// reports no result.
type unavailableCompleter struct{ err error }

func (u unavailableCompleter) Complete(context.Context, string, string) (string, error) {
	return "", u.err
}

// NewWriterWithCompleter creates a Writer with a custom Completer. Used by
// tests and by callers that already hold a client.
func NewWriterWithCompleter(c Completer, model string) *Writer {
	return &Writer{completer: c, model: model}
}

// toneProfiles maps tone names to the voice instructions embedded in the
// system prompt.
var toneProfiles = map[string]string{
	"professional": "You write in a polished, businesslike voice. Precise claims, no hype, no exclamation marks.",
	"casual":       "You write in a relaxed, conversational voice, like explaining to a colleague over coffee. Contractions are fine.",
	"friendly":     "You write in a warm, encouraging voice that speaks directly to the reader as 'you'.",
	"authoritative": "You write with the confidence of a recognized industry expert. Strong declarative statements backed by reasoning.",
	"storytelling": "You open sections with short concrete scenarios before making the general point.",
	"domain-expert": "You are a senior practitioner with 15 years in this field. You reference real workflows, common mistakes, and hard-won lessons. You avoid generic filler advice.",
}

// ToneNames lists the supported tone profiles.
func ToneNames() []string {
	return []string{"professional", "casual", "friendly", "authoritative", "storytelling", "domain-expert"}
}

func toneInstruction(tone string) string {
	if instr, ok := toneProfiles[strings.ToLower(tone)]; ok {
		return instr
	}
	return toneProfiles["professional"]
}

// GenerateDraft produces a structured article draft. It never returns an
// error: any model or parse failure yields a deterministic fallback draft
// with ModelUsed set to "fallback".
func (w *Writer) GenerateDraft(ctx context.Context, req core.GenerationRequest, source core.CombinedContext) *core.ArticleDraft {
	log := logger.Get()

	system := buildSystemPrompt(req)
	user := buildDraftPrompt(req, source)

	raw, err := w.completer.Complete(ctx, system, user)
	if err != nil {
		log.Warn("draft generation failed, using fallback article", "error", err)
		return fallbackDraft(req)
	}

	draft, err := ParseDraft(raw, req)
	if err != nil {
		log.Warn("draft parsing failed, using fallback article", "error", err)
		return fallbackDraft(req)
	}
	draft.ModelUsed = w.model
	return draft
}

// IntegrateLinks asks the model to weave the given internal links into the
// article body. Returns the empty string when the call fails or produces a
// suspiciously short result, so callers fall back to string-based insertion.
func (w *Writer) IntegrateLinks(ctx context.Context, articleMarkdown, linksText string) string {
	if strings.TrimSpace(linksText) == "" {
		return ""
	}

	system := "You are an editor who inserts internal links into marketing articles. " +
		"You never change wording, only wrap existing phrases in markdown links. " +
		"At most 2 links per section. Return the complete article."
	user := fmt.Sprintf("Insert these internal links where the anchor text fits naturally:\n%s\n\nArticle:\n%s",
		linksText, articleMarkdown)

	out, err := w.completer.Complete(ctx, system, user)
	if err != nil {
		logger.Get().Warn("link integration call failed", "error", err)
		return ""
	}
	out = stripCodeFence(out)
	// A reply much shorter than the input means the model summarized
	// instead of editing.
	if len(out) < len(articleMarkdown)/2 {
		return ""
	}
	return out
}

func buildSystemPrompt(req core.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("You are a marketing content writer producing SEO-optimized articles in markdown. ")
	b.WriteString(toneInstruction(req.Tone))
	b.WriteString("\n\nFormat rules:\n")
	b.WriteString("- Start with a single '# ' title line.\n")
	b.WriteString("- Follow with one standalone paragraph of 150-160 characters usable as a meta description.\n")
	b.WriteString("- Mark every section heading with '## '.\n")
	b.WriteString("- No concluding notes outside the article.\n")
	return b.String()
}

func buildDraftPrompt(req core.GenerationRequest, source core.CombinedContext) string {
	var b strings.Builder

	language := req.Language
	if language == "" {
		language = "English"
	}
	sections := req.Sections
	if sections < 1 {
		sections = 5
	}
	wordTarget := req.WordTarget
	if wordTarget < 300 {
		wordTarget = 1200
	}

	fmt.Fprintf(&b, "Write a %s marketing article of roughly %d words with exactly %d '## ' sections.\n",
		language, wordTarget, sections)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords (first is primary, use it in title and meta description): %s\n",
			strings.Join(req.Keywords, ", "))
	}
	if req.Focus != "" {
		fmt.Fprintf(&b, "Angle: %s\n", req.Focus)
	}

	if source.Content != "" {
		fmt.Fprintf(&b, "\nGround the article in this source material (%d sources). Do not copy sentences verbatim:\n%s\n",
			source.SourceCount, source.Content)
	}

	if req.ExternalLinks != "" {
		fmt.Fprintf(&b, "\nReference these external resources where relevant, as markdown links:\n%s\n", req.ExternalLinks)
	}

	writePromotionInstructions(&b, req)

	return b.String()
}

func writePromotionInstructions(b *strings.Builder, req core.GenerationRequest) {
	if req.Promotion == "" || req.PromotionalStyle == "" || req.PromotionalStyle == "No Promotion" {
		return
	}
	if project, ok := promo.Lookup(req.Promotion); ok {
		fmt.Fprintf(b, "\nAbout %s: %s\n", project.Name, project.Context)
	}
	switch req.PromotionalStyle {
	case "CTA only":
		fmt.Fprintf(b, "\nEnd the article with a short call-to-action paragraph promoting %s. Keep the rest of the article neutral.\n", req.Promotion)
	case "Full Section + CTA":
		fmt.Fprintf(b, "\nInclude one dedicated '## ' section presenting %s as a solution, and end with a call-to-action paragraph for it.\n", req.Promotion)
	}
}

// ctaTemplates are deterministic closing lines used when the model did not
// produce one. Selection hashes the title so regeneration is stable.
var ctaTemplates = []string{
	"Ready to put this into practice? Start with one change this week and measure the difference.",
	"The teams seeing results are the ones that started. Pick one tactic above and ship it.",
	"Want to go deeper? Apply these steps to your next campaign and track what moves the numbers.",
	"Start small, measure honestly, and scale what works.",
}

// SelectCTA returns a closing call-to-action for the given title.
func SelectCTA(title string) string {
	h := 0
	for _, r := range title {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	return ctaTemplates[h%len(ctaTemplates)]
}

// fallbackDraft builds the deterministic canned article used when the model
// is unavailable. It honors the requested section count and keywords so the
// rest of the pipeline behaves identically.
func fallbackDraft(req core.GenerationRequest) *core.ArticleDraft {
	keyword := "your topic"
	if len(req.Keywords) > 0 && req.Keywords[0] != "" {
		keyword = req.Keywords[0]
	}

	sections := req.Sections
	if sections < 1 {
		sections = 5
	}
	headings := []string{
		"Why " + keyword + " matters now",
		"Getting started with " + keyword,
		"Common mistakes to avoid",
		"Measuring what works",
		"Building a repeatable process",
		"Scaling your results",
		"Tools worth evaluating",
		"Putting it all together",
	}
	if sections > len(headings) {
		sections = len(headings)
	}

	title := titleCase(keyword) + ": A Practical Guide"
	meta := fmt.Sprintf("A practical guide to %s: how to get started, the mistakes to avoid, and how to measure results that actually matter to your business.", keyword)
	if len(meta) > 160 {
		meta = meta[:157] + "..."
	}

	var secs []core.Section
	for i := 0; i < sections; i++ {
		content := fmt.Sprintf("This section covers %s in the context of %s. "+
			"Focus on one concrete improvement at a time, validate it against real data, "+
			"and document what you learn so the next iteration starts further ahead.",
			strings.ToLower(headings[i]), keyword)
		secs = append(secs, core.Section{
			Heading:   headings[i],
			Content:   content,
			Keywords:  req.Keywords,
			WordCount: len(strings.Fields(content)),
		})
	}

	draft := &core.ArticleDraft{
		ID:              uuid.New().String(),
		Title:           title,
		SEOTitle:        seoTitle(title),
		MetaDescription: meta,
		Slug:            seo.Slugify(title),
		Sections:        secs,
		CTA:             SelectCTA(title),
		FocusKeywords:   req.Keywords,
		Language:        req.Language,
		Tone:            req.Tone,
		ModelUsed:       "fallback",
		DateGenerated:   req.RequestedAt,
	}
	draft.TotalWordCount = totalWords(draft)
	return draft
}

func seoTitle(title string) string {
	if len(title) <= 60 {
		return title
	}
	cut := title[:60]
	if idx := strings.LastIndex(cut, " "); idx > 30 {
		cut = cut[:idx]
	}
	return cut
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func totalWords(d *core.ArticleDraft) int {
	n := 0
	for _, s := range d.Sections {
		n += s.WordCount
	}
	return n
}
