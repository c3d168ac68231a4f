package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// stylesheet is inlined so exported files render standalone.
const stylesheet = `body{font-family:-apple-system,"Segoe UI",Roboto,sans-serif;max-width:720px;margin:0 auto;padding:2rem 1rem;color:#1a1a2e;line-height:1.7}
h1{font-size:2rem;line-height:1.25;margin-bottom:.5rem}
h2{font-size:1.4rem;margin-top:2.2rem;border-bottom:1px solid #e4e4ef;padding-bottom:.3rem}
figure{margin:1.5rem 0}
figure img{max-width:100%;border-radius:8px}
figcaption{font-size:.85rem;color:#6b6b80;text-align:center;margin-top:.4rem}
a{color:#2456d6}
.meta{color:#6b6b80;font-size:.9rem;margin-bottom:2rem}
.cta{background:#f2f5ff;border-left:4px solid #2456d6;padding:1rem 1.2rem;margin-top:2.5rem;border-radius:0 8px 8px 0;font-weight:600}`

// RenderHTML serializes the document to a standalone HTML page with Open
// Graph metadata and Article JSON-LD.
func RenderHTML(doc *Document) ([]byte, error) {
	var b strings.Builder

	lang := langCode(doc.Language)
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", lang)
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(doc.Title))
	fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(doc.MetaDescription))
	if len(doc.Keywords) > 0 {
		fmt.Fprintf(&b, "<meta name=\"keywords\" content=\"%s\">\n", html.EscapeString(strings.Join(doc.Keywords, ", ")))
	}
	fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\">\n", html.EscapeString(doc.Title))
	fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\">\n", html.EscapeString(doc.MetaDescription))
	b.WriteString("<meta property=\"og:type\" content=\"article\">\n")
	if img := firstImage(doc); img != nil {
		fmt.Fprintf(&b, "<meta property=\"og:image\" content=\"%s\">\n", html.EscapeString(img.URL))
	}

	schema, err := articleSchema(doc)
	if err != nil {
		return nil, fmt.Errorf("building JSON-LD: %w", err)
	}
	fmt.Fprintf(&b, "<script type=\"application/ld+json\">\n%s\n</script>\n", schema)

	fmt.Fprintf(&b, "<style>%s</style>\n</head>\n<body>\n<article>\n", stylesheet)

	for _, node := range doc.Nodes {
		switch n := node.(type) {
		case HeadingNode:
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", n.Level, html.EscapeString(n.Text), n.Level)
			if n.Level == 1 {
				fmt.Fprintf(&b, "<p class=\"meta\">%d min read &middot; %d words</p>\n",
					doc.ReadMinutes(), doc.WordCount)
			}
		case ParagraphNode:
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(n.Markdown), &buf); err != nil {
				return nil, fmt.Errorf("converting markdown: %w", err)
			}
			b.Write(buf.Bytes())
		case ImageNode:
			b.WriteString("<figure>\n")
			fmt.Fprintf(&b, "<img src=\"%s\" alt=\"%s\">\n", html.EscapeString(n.URL), html.EscapeString(n.Alt))
			if n.Caption != "" {
				fmt.Fprintf(&b, "<figcaption>%s</figcaption>\n", html.EscapeString(n.Caption))
			}
			b.WriteString("</figure>\n")
		case CTANode:
			fmt.Fprintf(&b, "<p class=\"cta\">%s</p>\n", html.EscapeString(n.Text))
		}
	}

	b.WriteString("</article>\n</body>\n</html>\n")
	return []byte(b.String()), nil
}

// articleSchema builds the schema.org Article JSON-LD block.
func articleSchema(doc *Document) (string, error) {
	schema := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    doc.Title,
		"description": doc.MetaDescription,
		"wordCount":   doc.WordCount,
		"keywords":    strings.Join(doc.Keywords, ", "),
		"datePublished": time.Now().Format("2006-01-02"),
	}
	if img := firstImage(doc); img != nil {
		schema["image"] = img.URL
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func firstImage(doc *Document) *ImageNode {
	for _, node := range doc.Nodes {
		if img, ok := node.(ImageNode); ok {
			return &img
		}
	}
	return nil
}

// langCode maps language names to BCP 47 codes for the html lang attribute.
func langCode(language string) string {
	switch strings.ToLower(language) {
	case "", "english":
		return "en"
	case "german":
		return "de"
	case "french":
		return "fr"
	case "spanish":
		return "es"
	case "portuguese":
		return "pt"
	case "italian":
		return "it"
	case "dutch":
		return "nl"
	case "japanese":
		return "ja"
	case "chinese":
		return "zh"
	default:
		return "en"
	}
}
