package enhance

import (
	"strings"
	"testing"

	"draftsmith/internal/core"
)

func TestParseLinks(t *testing.T) {
	input := "email segmentation: /guides/segmentation\nautomation tools: /tools, broken entry without url\nwelcome series: /guides/welcome"
	links := ParseLinks(input)

	if len(links) != 3 {
		t.Fatalf("Expected 3 links, got %d: %v", len(links), links)
	}
	if links[0].Text != "email segmentation" || links[0].URL != "/guides/segmentation" {
		t.Errorf("Unexpected first link: %+v", links[0])
	}
	if links[1].URL != "/tools" {
		t.Errorf("Expected comma-separated entry parsed, got %+v", links[1])
	}
}

func TestParseLinksEmpty(t *testing.T) {
	if links := ParseLinks("no links here at all"); len(links) != 0 {
		t.Errorf("Expected no links, got %v", links)
	}
}

func TestInsertLinksExactMatch(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Heading: "Basics", Content: "Start with email segmentation before anything else."},
	}}
	n := InsertLinks(draft, []Link{{Text: "email segmentation", URL: "/guides/segmentation"}})

	if n != 1 {
		t.Fatalf("Expected 1 insertion, got %d", n)
	}
	want := "Start with [email segmentation](/guides/segmentation) before anything else."
	if draft.Sections[0].Content != want {
		t.Errorf("Expected %q, got %q", want, draft.Sections[0].Content)
	}
}

func TestInsertLinksCaseInsensitive(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Heading: "Basics", Content: "Email Segmentation is where winning campaigns start."},
	}}
	n := InsertLinks(draft, []Link{{Text: "email segmentation", URL: "/guides/segmentation"}})

	if n != 1 {
		t.Fatalf("Expected 1 insertion, got %d", n)
	}
	if !strings.Contains(draft.Sections[0].Content, "[Email Segmentation](/guides/segmentation)") {
		t.Errorf("Expected original casing preserved, got %q", draft.Sections[0].Content)
	}
}

func TestInsertLinksSkipsAlreadyLinkedText(t *testing.T) {
	content := "Read about [email segmentation](/existing) to learn more."
	draft := &core.ArticleDraft{Sections: []core.Section{{Content: content}}}
	n := InsertLinks(draft, []Link{{Text: "email segmentation", URL: "/guides/segmentation"}})

	if n != 0 {
		t.Errorf("Expected no insertion into existing link, got %d (%q)", n, draft.Sections[0].Content)
	}
	if draft.Sections[0].Content != content {
		t.Errorf("Expected content unchanged, got %q", draft.Sections[0].Content)
	}
}

func TestInsertLinksMaxTwoPerSection(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Content: "We cover alpha topics, beta topics, and gamma topics in depth."},
	}}
	links := []Link{
		{Text: "alpha topics", URL: "/a"},
		{Text: "beta topics", URL: "/b"},
		{Text: "gamma topics", URL: "/c"},
	}
	n := InsertLinks(draft, links)

	if n != 2 {
		t.Errorf("Expected 2 insertions (section cap), got %d", n)
	}
	if strings.Contains(draft.Sections[0].Content, "(/c)") {
		t.Errorf("Expected third link skipped, got %q", draft.Sections[0].Content)
	}
}

func TestInsertLinksEachLinkUsedOnce(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Content: "First mention of automation tools here."},
		{Content: "Second mention of automation tools there."},
	}}
	n := InsertLinks(draft, []Link{{Text: "automation tools", URL: "/tools"}})

	if n != 1 {
		t.Errorf("Expected link used once, got %d insertions", n)
	}
	if strings.Contains(draft.Sections[1].Content, "](") {
		t.Errorf("Expected second section untouched, got %q", draft.Sections[1].Content)
	}
}

func TestInsertLinksOverlapFallback(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Content: "Good segmentation practice beats volume. Send less, convert more."},
	}}
	n := InsertLinks(draft, []Link{{Text: "segmentation practice guide", URL: "/guides/segmentation"}})

	if n != 1 {
		t.Fatalf("Expected overlap insertion, got %d (%q)", n, draft.Sections[0].Content)
	}
	if !strings.Contains(draft.Sections[0].Content, "(see [segmentation practice guide](/guides/segmentation))") {
		t.Errorf("Expected parenthetical reference, got %q", draft.Sections[0].Content)
	}
}

func TestInsertLinksNoMatch(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Content: "Completely unrelated prose about gardening."},
	}}
	n := InsertLinks(draft, []Link{{Text: "kubernetes operators", URL: "/k8s"}})
	if n != 0 {
		t.Errorf("Expected no insertion, got %d", n)
	}
}

func TestAddTransitions(t *testing.T) {
	draft := &core.ArticleDraft{Sections: []core.Section{
		{Content: "Opening section stays untouched."},
		{Content: "Middle section gets a transition."},
		{Content: "Another middle section here."},
		{Content: "Closing section stays untouched."},
	}}
	AddTransitions(draft)

	if !strings.HasPrefix(draft.Sections[1].Content, "Beyond that, middle section") {
		t.Errorf("Expected transition on section 1, got %q", draft.Sections[1].Content)
	}
	if !strings.HasPrefix(draft.Sections[2].Content, "With that in place, another") {
		t.Errorf("Expected second transition on section 2, got %q", draft.Sections[2].Content)
	}
	if strings.HasPrefix(draft.Sections[0].Content, "Beyond") {
		t.Error("Expected first section untouched")
	}
	if !strings.HasPrefix(draft.Sections[3].Content, "Closing section") {
		t.Error("Expected last section untouched")
	}

	// Idempotent: running again adds nothing.
	before := draft.Sections[1].Content
	AddTransitions(draft)
	if draft.Sections[1].Content != before {
		t.Errorf("Expected idempotent transitions, got %q", draft.Sections[1].Content)
	}
}

func TestEnsureCTA(t *testing.T) {
	draft := &core.ArticleDraft{Title: "Email Marketing That Converts"}
	EnsureCTA(draft)
	if draft.CTA == "" {
		t.Fatal("Expected CTA to be filled in")
	}

	existing := "Custom CTA stays."
	draft.CTA = existing
	EnsureCTA(draft)
	if draft.CTA != existing {
		t.Errorf("Expected existing CTA preserved, got %q", draft.CTA)
	}
}
