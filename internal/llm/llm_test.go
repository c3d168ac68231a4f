package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.last = user
	return f.reply, f.err
}

const sampleReply = `# Email Marketing That Converts

Email marketing remains the highest-ROI channel when campaigns are segmented, automated, and measured against revenue instead of open rates.

## Start with segmentation

Blasting the full list trains subscribers to ignore you. Split by behavior first.

## Automate the follow-up

A three-email welcome sequence outperforms any one-off campaign.

## Measure revenue, not opens

Open rates died with privacy changes. Track clicks and attributed revenue.`

func TestParseDraft(t *testing.T) {
	req := core.GenerationRequest{Keywords: []string{"email marketing"}, Sections: 3}
	draft, err := ParseDraft(sampleReply, req)
	if err != nil {
		t.Fatalf("ParseDraft returned error: %v", err)
	}

	if draft.Title != "Email Marketing That Converts" {
		t.Errorf("Expected title 'Email Marketing That Converts', got %q", draft.Title)
	}
	if len(draft.Sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(draft.Sections))
	}
	if draft.Sections[0].Heading != "Start with segmentation" {
		t.Errorf("Expected first heading 'Start with segmentation', got %q", draft.Sections[0].Heading)
	}
	if !strings.Contains(draft.MetaDescription, "highest-ROI channel") {
		t.Errorf("Expected meta from first paragraph, got %q", draft.MetaDescription)
	}
	if len(draft.MetaDescription) > 160 {
		t.Errorf("Expected meta at most 160 chars, got %d", len(draft.MetaDescription))
	}
	if draft.Slug != "email-marketing-that-converts" {
		t.Errorf("Expected slug 'email-marketing-that-converts', got %q", draft.Slug)
	}
	if draft.TotalWordCount == 0 {
		t.Error("Expected non-zero total word count")
	}
	if draft.ID == "" {
		t.Error("Expected draft ID to be set")
	}
}

func TestParseDraftNoMarkers(t *testing.T) {
	raw := "# Just a Title\n\nOne long paragraph without any section markers at all, " +
		"which still needs to become a usable article section."
	draft, err := ParseDraft(raw, core.GenerationRequest{Sections: 5})
	if err != nil {
		t.Fatalf("ParseDraft returned error: %v", err)
	}
	if len(draft.Sections) != 1 {
		t.Fatalf("Expected 1 synthesized section, got %d", len(draft.Sections))
	}
	if draft.Sections[0].Heading != "Just a Title" {
		t.Errorf("Expected synthesized heading from title, got %q", draft.Sections[0].Heading)
	}
	if draft.Sections[0].Content == "" {
		t.Error("Expected section content to hold the body")
	}
}

func TestParseDraftFoldsExcessSections(t *testing.T) {
	raw := "# Title Here\n\n## One\n\nfirst\n\n## Two\n\nsecond\n\n## Three\n\nthird\n\n## Four\n\nfourth"
	draft, err := ParseDraft(raw, core.GenerationRequest{Sections: 2})
	if err != nil {
		t.Fatalf("ParseDraft returned error: %v", err)
	}
	if len(draft.Sections) != 2 {
		t.Fatalf("Expected 2 sections after folding, got %d", len(draft.Sections))
	}
	last := draft.Sections[1]
	if !strings.Contains(last.Content, "third") || !strings.Contains(last.Content, "fourth") {
		t.Errorf("Expected overflow content folded into last section, got %q", last.Content)
	}
}

func TestParseDraftEmpty(t *testing.T) {
	if _, err := ParseDraft("   \n  ", core.GenerationRequest{}); err == nil {
		t.Error("Expected error for empty reply")
	}
}

func TestParseDraftCodeFence(t *testing.T) {
	raw := "```markdown\n# Fenced Title\n\n## Section\n\nbody text\n```"
	draft, err := ParseDraft(raw, core.GenerationRequest{})
	if err != nil {
		t.Fatalf("ParseDraft returned error: %v", err)
	}
	if draft.Title != "Fenced Title" {
		t.Errorf("Expected fence to be stripped, got title %q", draft.Title)
	}
}

func TestGenerateDraftFallbackOnError(t *testing.T) {
	w := NewWriterWithCompleter(&fakeCompleter{err: errors.New("rate limited")}, "gpt-4o")
	req := core.GenerationRequest{Keywords: []string{"content strategy"}, Sections: 3}

	draft := w.GenerateDraft(context.Background(), req, core.CombinedContext{})
	if draft == nil {
		t.Fatal("Expected fallback draft, got nil")
	}
	if draft.ModelUsed != "fallback" {
		t.Errorf("Expected ModelUsed 'fallback', got %q", draft.ModelUsed)
	}
	if len(draft.Sections) != 3 {
		t.Errorf("Expected 3 fallback sections, got %d", len(draft.Sections))
	}
	if !strings.Contains(strings.ToLower(draft.Title), "content strategy") {
		t.Errorf("Expected keyword in fallback title, got %q", draft.Title)
	}
}

func TestGenerateDraftPromptContents(t *testing.T) {
	fake := &fakeCompleter{reply: sampleReply}
	w := NewWriterWithCompleter(fake, "gpt-4o")
	req := core.GenerationRequest{
		Keywords:         []string{"email marketing", "automation"},
		Sections:         3,
		WordTarget:       1500,
		Focus:            "B2B SaaS",
		Promotion:        "MailForge",
		PromotionalStyle: "Full Section + CTA",
	}
	source := core.CombinedContext{Content: "Source: https://x.com\nsome source text", SourceCount: 1}

	draft := w.GenerateDraft(context.Background(), req, source)
	if draft.ModelUsed != "gpt-4o" {
		t.Errorf("Expected model name recorded, got %q", draft.ModelUsed)
	}

	for _, want := range []string{"email marketing, automation", "1500 words", "3 '## ' sections", "B2B SaaS", "MailForge", "some source text"} {
		if !strings.Contains(fake.last, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestIntegrateLinks(t *testing.T) {
	article := strings.Repeat("Paragraph about segmentation and automation workflows. ", 10)
	linked := article + " [segmentation](/guides/segmentation)"

	fake := &fakeCompleter{reply: linked}
	w := NewWriterWithCompleter(fake, "gpt-4o")

	out := w.IntegrateLinks(context.Background(), article, "segmentation: /guides/segmentation")
	if out != linked {
		t.Errorf("Expected model reply returned, got %q", out)
	}

	// Failure returns empty so callers fall back to string insertion.
	w = NewWriterWithCompleter(&fakeCompleter{err: errors.New("boom")}, "gpt-4o")
	if out := w.IntegrateLinks(context.Background(), article, "x: /y"); out != "" {
		t.Errorf("Expected empty string on error, got %q", out)
	}

	// A reply that shrank the article is rejected.
	w = NewWriterWithCompleter(&fakeCompleter{reply: "short"}, "gpt-4o")
	if out := w.IntegrateLinks(context.Background(), article, "x: /y"); out != "" {
		t.Errorf("Expected empty string for truncated reply, got %q", out)
	}

	// No links requested means no model call.
	fake = &fakeCompleter{reply: "anything"}
	w = NewWriterWithCompleter(fake, "gpt-4o")
	if out := w.IntegrateLinks(context.Background(), article, "   "); out != "" || fake.calls != 0 {
		t.Errorf("Expected no call for empty links, got %q after %d calls", out, fake.calls)
	}
}

func TestSelectCTADeterministic(t *testing.T) {
	a := SelectCTA("Email Marketing That Converts")
	b := SelectCTA("Email Marketing That Converts")
	if a != b {
		t.Errorf("Expected stable CTA selection, got %q then %q", a, b)
	}
	if a == "" {
		t.Error("Expected non-empty CTA")
	}
}

func TestNewWriterWithoutKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.OpenAI.Model = "gpt-4o"

	w, err := NewWriter(cfg)
	if err != nil {
		t.Fatalf("Expected no error without an API key, got %v", err)
	}

	req := core.GenerationRequest{Keywords: []string{"email marketing"}, Sections: 3}
	draft := w.GenerateDraft(context.Background(), req, core.CombinedContext{})
	if draft.ModelUsed != "fallback" {
		t.Errorf("Expected fallback draft, got model %q", draft.ModelUsed)
	}
}
