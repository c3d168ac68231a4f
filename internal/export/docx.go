package export

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"draftsmith/internal/logger"
)

// Font sizes in half-points, the unit DOCX uses.
const (
	docxTitleSize   = "44"
	docxHeadingSize = "32"
	docxCaptionSize = "18"
	captionGray     = "808080"
	ctaBlue         = "2456D6"
)

// RenderDOCX serializes the document tree to a Word file.
func RenderDOCX(doc *Document, w io.Writer) error {
	d := docx.New().WithDefaultTheme()

	for _, node := range doc.Nodes {
		switch n := node.(type) {
		case HeadingNode:
			para := d.AddParagraph()
			run := para.AddText(n.Text).Bold()
			if n.Level == 1 {
				run.Size(docxTitleSize)
				if doc.MetaDescription != "" {
					desc := d.AddParagraph()
					desc.AddText(doc.MetaDescription).Italic().Color(captionGray)
				}
				meta := d.AddParagraph()
				meta.AddText(fmt.Sprintf("%d min read · %d words", doc.ReadMinutes(), doc.WordCount)).
					Size(docxCaptionSize).Color(captionGray)
			} else {
				run.Size(docxHeadingSize)
			}
		case ParagraphNode:
			for _, block := range strings.Split(n.Markdown, "\n\n") {
				block = strings.TrimSpace(block)
				if block == "" {
					continue
				}
				para := d.AddParagraph()
				writeMarkdownRuns(para, block)
			}
		case ImageNode:
			addImage(d, n)
		case CTANode:
			para := d.AddParagraph()
			para.AddText(n.Text).Bold().Color(ctaBlue)
		}
	}

	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("writing docx: %w", err)
	}
	return nil
}

// addImage embeds the locally cached image; remote-only images degrade to a
// caption line because DOCX cannot reference external URLs inline.
func addImage(d *docx.Docx, n ImageNode) {
	if n.LocalPath != "" && n.LocalPath != n.URL {
		if _, err := os.Stat(n.LocalPath); err == nil {
			para := d.AddParagraph().Justification("center")
			if _, err := para.AddInlineDrawingFrom(n.LocalPath); err == nil {
				if n.Caption != "" {
					capt := d.AddParagraph().Justification("center")
					capt.AddText(n.Caption).Size(docxCaptionSize).Color(captionGray)
				}
				return
			}
			logger.Get().Debug("inline drawing failed, falling back to caption", "path", n.LocalPath)
		}
	}
	para := d.AddParagraph().Justification("center")
	para.AddText(fmt.Sprintf("[Image: %s]", n.Alt)).Size(docxCaptionSize).Color(captionGray)
}

var inlineTokenRe = regexp.MustCompile(`\*\*[^*]+\*\*|\[[^\]]+\]\([^)\s]+\)`)

// writeMarkdownRuns emits a paragraph's runs, honoring bold spans and turning
// markdown links into "text (url)" since run-level hyperlinks are out of
// scope for exports meant for copy-paste into a CMS.
func writeMarkdownRuns(para *docx.Paragraph, block string) {
	last := 0
	for _, loc := range inlineTokenRe.FindAllStringIndex(block, -1) {
		if loc[0] > last {
			para.AddText(block[last:loc[0]])
		}
		token := block[loc[0]:loc[1]]
		switch {
		case strings.HasPrefix(token, "**"):
			para.AddText(strings.Trim(token, "*")).Bold()
		case strings.HasPrefix(token, "["):
			text := token[1:strings.Index(token, "]")]
			url := token[strings.Index(token, "](")+2 : len(token)-1]
			para.AddText(fmt.Sprintf("%s (%s)", text, url))
		}
		last = loc[1]
	}
	if last < len(block) {
		para.AddText(block[last:])
	}
}
