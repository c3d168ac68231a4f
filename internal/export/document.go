// Package export serializes generation results to HTML, DOCX, and an
// analytics JSON report. Formats share one typed document tree so content
// decisions are made once and each serializer only handles its format.
package export

import (
	"fmt"

	"draftsmith/internal/core"
)

// Node is one block in the document tree.
type Node interface {
	node()
}

// HeadingNode is a section or article heading.
type HeadingNode struct {
	Level int
	Text  string
}

// ParagraphNode holds markdown body text.
type ParagraphNode struct {
	Markdown string
}

// ImageNode is an illustration with accessibility metadata.
type ImageNode struct {
	URL       string
	LocalPath string
	Alt       string
	Caption   string
}

// CTANode is the closing call to action.
type CTANode struct {
	Text string
}

func (HeadingNode) node()   {}
func (ParagraphNode) node() {}
func (ImageNode) node()     {}
func (CTANode) node()       {}

// Document is the format-independent article tree.
type Document struct {
	Title           string
	MetaDescription string
	Slug            string
	Language        string
	Keywords        []string
	WordCount       int
	Nodes           []Node
}

// Build assembles the document tree from a draft and optional cover image.
// The cover is placed between the title and the first section.
func Build(draft *core.ArticleDraft, cover *core.ImageResult) *Document {
	doc := &Document{
		Title:           draft.Title,
		MetaDescription: draft.MetaDescription,
		Slug:            draft.Slug,
		Language:        draft.Language,
		Keywords:        draft.FocusKeywords,
		WordCount:       draft.TotalWordCount,
	}

	doc.Nodes = append(doc.Nodes, HeadingNode{Level: 1, Text: draft.Title})

	if cover != nil && cover.URL != "" {
		alt := cover.AltText
		if alt == "" {
			alt = fmt.Sprintf("Illustration for %s", draft.Title)
		}
		doc.Nodes = append(doc.Nodes, ImageNode{
			URL:       cover.URL,
			LocalPath: cover.LocalPath,
			Alt:       alt,
			Caption:   cover.Caption,
		})
	}

	for _, s := range draft.Sections {
		doc.Nodes = append(doc.Nodes, HeadingNode{Level: 2, Text: s.Heading})
		if s.Content != "" {
			doc.Nodes = append(doc.Nodes, ParagraphNode{Markdown: s.Content})
		}
	}

	if draft.CTA != "" {
		doc.Nodes = append(doc.Nodes, CTANode{Text: draft.CTA})
	}

	return doc
}

// ReadMinutes estimates reading time at 200 words per minute, at least 1.
func (d *Document) ReadMinutes() int {
	minutes := d.WordCount / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
