// Package extract pulls readable article content out of web pages. It tries a
// hosted reader API first, then local readability parsing, then raw CSS
// selectors, so a single slow or blocked endpoint never sinks a generation run.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/logger"
)

const (
	userAgent          = "Mozilla/5.0 (compatible; Draftsmith/1.0; +article-generator)"
	maxContentChars    = 8000
	maxConcurrentFetch = 3
)

// Extractor fetches and cleans source pages for LLM context.
type Extractor struct {
	client         *http.Client
	readerEndpoint string
	timeout        time.Duration
	maxURLs        int
}

// New creates an Extractor from the application configuration.
func New(cfg *config.Config) *Extractor {
	timeout := cfg.ReaderTimeout()
	return &Extractor{
		client:         &http.Client{Timeout: timeout},
		readerEndpoint: strings.TrimRight(cfg.Reader.Endpoint, "/"),
		timeout:        timeout,
		maxURLs:        cfg.Reader.MaxURLs,
	}
}

// ExtractURL extracts content from a single URL, cascading through extraction
// methods. The returned value always has Success and Method set; callers can
// use partial results even when extraction failed.
func (e *Extractor) ExtractURL(ctx context.Context, pageURL string) core.ExtractedContent {
	log := logger.Get()

	content, err := e.viaReaderAPI(ctx, pageURL)
	if err == nil {
		return content
	}
	log.Debug("reader API extraction failed", "url", pageURL, "error", err)

	content, err = e.viaReadability(pageURL)
	if err == nil {
		return content
	}
	log.Debug("readability extraction failed", "url", pageURL, "error", err)

	content, err = e.viaSelectors(ctx, pageURL)
	if err == nil {
		return content
	}
	log.Warn("all extraction methods failed", "url", pageURL, "error", err)
	return core.ExtractedContent{
		URL:     pageURL,
		Method:  "failed",
		Success: false,
		Error:   err.Error(),
	}
}

// ExtractAll extracts up to the configured maximum of URLs concurrently,
// preserving input order in the result slice.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) []core.ExtractedContent {
	if len(urls) > e.maxURLs {
		urls = urls[:e.maxURLs]
	}

	results := make([]core.ExtractedContent, len(urls))
	sem := make(chan struct{}, maxConcurrentFetch)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.ExtractURL(ctx, u)
		}(i, u)
	}
	wg.Wait()

	return results
}

// Combine merges successful extractions into a single context blob for prompt
// assembly. Each source contributes a capped slice of its content so one long
// page cannot crowd out the others.
func Combine(results []core.ExtractedContent) core.CombinedContext {
	var (
		parts    []string
		titles   []string
		keywords []string
		seen     = map[string]bool{}
		count    int
	)

	perSource := maxContentChars
	if n := successCount(results); n > 1 {
		perSource = maxContentChars / n
	}

	for _, r := range results {
		if !r.Success || r.MainContent == "" {
			continue
		}
		count++
		if r.Title != "" {
			titles = append(titles, r.Title)
		}
		body := r.MainContent
		if len(body) > perSource {
			body = body[:perSource]
		}
		parts = append(parts, fmt.Sprintf("Source: %s\n%s", r.URL, body))
		for _, kw := range r.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k != "" && !seen[k] {
				seen[k] = true
				keywords = append(keywords, k)
			}
		}
	}

	sort.Strings(keywords)
	return core.CombinedContext{
		Title:       combinedTitle(count, titles),
		Content:     strings.Join(parts, "\n\n---\n\n"),
		SourceCount: count,
		Keywords:    keywords,
	}
}

// combinedTitle labels multi-source contexts so the prompt builder can tell
// URL-grounded runs from keyword-only ones. At most three titles are listed.
func combinedTitle(count int, titles []string) string {
	if count <= 1 {
		return strings.Join(titles, " | ")
	}
	if len(titles) > 3 {
		titles = titles[:3]
	}
	return fmt.Sprintf("Analysis from %d sources: %s", count, strings.Join(titles, " | "))
}

func successCount(results []core.ExtractedContent) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

// readerResponse is the JSON envelope returned by the hosted reader API.
type readerResponse struct {
	Code int `json:"code"`
	Data struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"data"`
}

func (e *Extractor) viaReaderAPI(ctx context.Context, pageURL string) (core.ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.readerEndpoint+"/"+pageURL, nil)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("creating reader request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("reader API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.ExtractedContent{}, fmt.Errorf("reader API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("reading reader response: %w", err)
	}

	var parsed readerResponse
	title, description, content := "", "", ""
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Data.Content != "" {
		title = parsed.Data.Title
		description = parsed.Data.Description
		content = parsed.Data.Content
	} else {
		// Some deployments return plain markdown instead of JSON.
		content = string(body)
	}

	content = normalizeWhitespace(content)
	if len(content) < 200 {
		return core.ExtractedContent{}, fmt.Errorf("reader API content too short (%d chars)", len(content))
	}

	return core.ExtractedContent{
		URL:             pageURL,
		Title:           title,
		MetaDescription: description,
		Headings:        headingsFromMarkdown(content),
		MainContent:     truncate(content, maxContentChars),
		Keywords:        keywordsFromText(title + " " + content),
		Links:           linksFromMarkdown(content),
		Method:          "reader_api",
		Success:         true,
	}, nil
}

func (e *Extractor) viaReadability(pageURL string) (core.ExtractedContent, error) {
	article, err := readability.FromURL(pageURL, e.timeout)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("readability parse: %w", err)
	}

	content := normalizeWhitespace(article.TextContent)
	if len(content) < 200 {
		return core.ExtractedContent{}, fmt.Errorf("readability content too short (%d chars)", len(content))
	}

	var links []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
		links = linksFromDoc(doc)
	}

	return core.ExtractedContent{
		URL:             pageURL,
		Title:           article.Title,
		MetaDescription: article.Excerpt,
		MainContent:     truncate(content, maxContentChars),
		Keywords:        keywordsFromText(article.Title + " " + content),
		Links:           links,
		Method:          "readability",
		Success:         true,
	}, nil
}

func (e *Extractor) viaSelectors(ctx context.Context, pageURL string) (core.ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.ExtractedContent{}, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return core.ExtractedContent{}, fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, aside, noscript").Remove()

	title := extractTitle(doc)
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")

	var headings []core.Heading
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		level := 1
		switch goquery.NodeName(s) {
		case "h2":
			level = 2
		case "h3":
			level = 3
		}
		headings = append(headings, core.Heading{Level: level, Text: text})
	})

	content := ""
	for _, selector := range []string{"article", "main", `[role="main"]`, ".post-content", ".article-content", ".entry-content", ".content", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := normalizeWhitespace(sel.Text()); len(text) > 200 {
				content = text
				break
			}
		}
	}
	if content == "" {
		return core.ExtractedContent{}, fmt.Errorf("no readable content found at %s", pageURL)
	}

	return core.ExtractedContent{
		URL:             pageURL,
		Title:           title,
		MetaDescription: strings.TrimSpace(description),
		Headings:        headings,
		MainContent:     truncate(content, maxContentChars),
		Keywords:        keywordsFromText(title + " " + content),
		Links:           linksFromDoc(doc),
		Method:          "selectors",
		Success:         true,
	}, nil
}

// extractTitle finds the page title with fallbacks: <title>, og:title, first h1.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

var (
	whitespaceRe      = regexp.MustCompile(`[ \t]+`)
	blankLinesRe      = regexp.MustCompile(`\n{3,}`)
	markdownHeadingRe = regexp.MustCompile(`(?m)^(#{1,3})\s+(.+)$`)
	wordRe            = regexp.MustCompile(`[a-zA-Z][a-zA-Z'-]{3,}`)
)

func normalizeWhitespace(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a word boundary where possible.
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}

const maxDiscoveredLinks = 20

var markdownLinkURLRe = regexp.MustCompile(`\]\((https?://[^)\s]+)\)`)

// linksFromMarkdown collects distinct absolute URLs from markdown link syntax.
func linksFromMarkdown(content string) []string {
	var links []string
	seen := map[string]bool{}
	for _, m := range markdownLinkURLRe.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			links = append(links, m[1])
		}
		if len(links) == maxDiscoveredLinks {
			break
		}
	}
	return links
}

// linksFromDoc collects distinct absolute URLs from anchor tags.
func linksFromDoc(doc *goquery.Document) []string {
	var links []string
	seen := map[string]bool{}
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return true
		}
		if !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
		return len(links) < maxDiscoveredLinks
	})
	return links
}

func headingsFromMarkdown(content string) []core.Heading {
	var headings []core.Heading
	for _, m := range markdownHeadingRe.FindAllStringSubmatch(content, 20) {
		headings = append(headings, core.Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
	}
	return headings
}

// stopWords excluded from naive keyword discovery.
var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "being": true,
	"could": true, "every": true, "from": true, "have": true, "here": true,
	"into": true, "just": true, "like": true, "more": true, "most": true,
	"other": true, "over": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "through": true, "very": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "would": true, "your": true,
}

// keywordsFromText returns the most frequent non-stopword terms, at most ten.
func keywordsFromText(text string) []string {
	counts := map[string]int{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if !stopWords[w] {
			counts[w]++
		}
	}

	type wc struct {
		word  string
		count int
	}
	var all []wc
	for w, c := range counts {
		if c >= 2 {
			all = append(all, wc{w, c})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})

	var keywords []string
	for i := 0; i < len(all) && i < 10; i++ {
		keywords = append(keywords, all[i].word)
	}
	return keywords
}
