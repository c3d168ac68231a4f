package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"draftsmith/internal/core"
)

func testExtractor(readerEndpoint string) *Extractor {
	return &Extractor{
		client:         &http.Client{Timeout: 5 * time.Second},
		readerEndpoint: strings.TrimRight(readerEndpoint, "/"),
		timeout:        5 * time.Second,
		maxURLs:        5,
	}
}

func TestViaReaderAPIJSON(t *testing.T) {
	body := strings.Repeat("Quality content about marketing automation workflows. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Expected Accept application/json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"data":{"title":"Marketing Guide","description":"A guide","content":"` + body + `"}}`))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	result, err := e.viaReaderAPI(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("viaReaderAPI returned error: %v", err)
	}

	if result.Title != "Marketing Guide" {
		t.Errorf("Expected title 'Marketing Guide', got %q", result.Title)
	}
	if result.Method != "reader_api" {
		t.Errorf("Expected method reader_api, got %q", result.Method)
	}
	if !result.Success {
		t.Error("Expected successful extraction")
	}
}

func TestViaReaderAPIPlainText(t *testing.T) {
	body := "# Heading One\n\n" + strings.Repeat("Plain markdown body text for the article under test. ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	result, err := e.viaReaderAPI(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("viaReaderAPI returned error: %v", err)
	}
	if len(result.Headings) == 0 || result.Headings[0].Text != "Heading One" {
		t.Errorf("Expected markdown heading to be captured, got %+v", result.Headings)
	}
}

func TestViaReaderAPIShortContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("too short"))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	if _, err := e.viaReaderAPI(context.Background(), "https://example.com/post"); err == nil {
		t.Error("Expected error for short content")
	}
}

func TestViaSelectors(t *testing.T) {
	html := `<html><head><title>Selector Title</title>
<meta name="description" content="Page description here"></head>
<body><nav>skip this</nav>
<article><h1>Main Heading</h1><h2>Sub Heading</h2>
<p>See <a href="https://example.com/study">the study</a> and <a href="/local">local</a>.</p>
<p>` + strings.Repeat("Readable paragraph content about content strategy. ", 15) + `</p>
</article><footer>skip footer</footer></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer server.Close()

	e := testExtractor("http://invalid.reader")
	result, err := e.viaSelectors(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("viaSelectors returned error: %v", err)
	}

	if result.Title != "Selector Title" {
		t.Errorf("Expected title 'Selector Title', got %q", result.Title)
	}
	if result.MetaDescription != "Page description here" {
		t.Errorf("Expected meta description, got %q", result.MetaDescription)
	}
	if len(result.Headings) != 2 {
		t.Fatalf("Expected 2 headings, got %d", len(result.Headings))
	}
	if result.Headings[1].Level != 2 {
		t.Errorf("Expected second heading level 2, got %d", result.Headings[1].Level)
	}
	if strings.Contains(result.MainContent, "skip footer") {
		t.Error("Expected footer content to be removed")
	}
	if result.Method != "selectors" {
		t.Errorf("Expected method selectors, got %q", result.Method)
	}
	if len(result.Links) != 1 || result.Links[0] != "https://example.com/study" {
		t.Errorf("Expected one absolute link, got %v", result.Links)
	}
}

func TestLinksFromMarkdown(t *testing.T) {
	content := "Read [the guide](https://example.com/guide) and [it again](https://example.com/guide), plus [a doc](/relative)."
	links := linksFromMarkdown(content)
	if len(links) != 1 || links[0] != "https://example.com/guide" {
		t.Errorf("Expected one deduplicated absolute link, got %v", links)
	}
}

func TestExtractURLFailure(t *testing.T) {
	e := testExtractor("http://127.0.0.1:1")
	e.client.Timeout = 500 * time.Millisecond
	e.timeout = 500 * time.Millisecond

	result := e.ExtractURL(context.Background(), "http://127.0.0.1:1/nothing")
	if result.Success {
		t.Error("Expected failed extraction")
	}
	if result.Method != "failed" {
		t.Errorf("Expected method failed, got %q", result.Method)
	}
	if result.Error == "" {
		t.Error("Expected error message to be set")
	}
}

func TestExtractAllPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"data":{"title":"T` + r.URL.Query().Get("n") + `","content":"` +
			strings.Repeat("Ordered body content for concurrency checks. ", 10) + `"}}`))
	}))
	defer server.Close()

	e := testExtractor(server.URL)
	urls := []string{
		"https://example.com/a?n=1",
		"https://example.com/b?n=2",
		"https://example.com/c?n=3",
	}
	results := e.ExtractAll(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Errorf("Result %d: expected URL %q, got %q", i, urls[i], r.URL)
		}
	}
}

func TestExtractAllCapsURLCount(t *testing.T) {
	e := testExtractor("http://127.0.0.1:1")
	e.maxURLs = 2
	e.client.Timeout = 200 * time.Millisecond

	results := e.ExtractAll(context.Background(), []string{"http://a", "http://b", "http://c"})
	if len(results) != 2 {
		t.Errorf("Expected 2 results after capping, got %d", len(results))
	}
}

func TestCombine(t *testing.T) {
	results := []core.ExtractedContent{
		{URL: "https://a.com", Title: "First", MainContent: "alpha content body", Keywords: []string{"alpha", "shared"}, Success: true},
		{URL: "https://b.com", Title: "Second", MainContent: "beta content body", Keywords: []string{"beta", "shared"}, Success: true},
		{URL: "https://c.com", Success: false},
	}

	combined := Combine(results)
	if combined.SourceCount != 2 {
		t.Errorf("Expected 2 sources, got %d", combined.SourceCount)
	}
	if combined.Title != "Analysis from 2 sources: First | Second" {
		t.Errorf("Expected labeled joined title, got %q", combined.Title)
	}
	if !strings.Contains(combined.Content, "Source: https://a.com") {
		t.Error("Expected source URL in combined content")
	}

	// Keywords are deduplicated and sorted.
	expected := []string{"alpha", "beta", "shared"}
	if len(combined.Keywords) != len(expected) {
		t.Fatalf("Expected %d keywords, got %d: %v", len(expected), len(combined.Keywords), combined.Keywords)
	}
	for i, kw := range expected {
		if combined.Keywords[i] != kw {
			t.Errorf("Keyword %d: expected %q, got %q", i, kw, combined.Keywords[i])
		}
	}
}

func TestTruncateOnWordBoundary(t *testing.T) {
	s := strings.Repeat("word ", 100)
	out := truncate(s, 52)
	if len(out) > 52 {
		t.Errorf("Expected at most 52 chars, got %d", len(out))
	}
	if strings.HasSuffix(out, " ") {
		t.Error("Expected no trailing space after boundary cut")
	}
}

func TestKeywordsFromText(t *testing.T) {
	text := "automation automation automation pipeline pipeline content the with from"
	keywords := keywordsFromText(text)

	if len(keywords) < 2 {
		t.Fatalf("Expected at least 2 keywords, got %v", keywords)
	}
	if keywords[0] != "automation" {
		t.Errorf("Expected most frequent keyword first, got %q", keywords[0])
	}
	for _, kw := range keywords {
		if stopWords[kw] {
			t.Errorf("Stop word %q should be excluded", kw)
		}
	}
}
