package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/pipeline"
)

// NewGenerateCmd creates the article generation command.
func NewGenerateCmd() *cobra.Command {
	var (
		keywords      string
		sources       []string
		language      string
		tone          string
		focus         string
		sections      int
		wordTarget    int
		promotion     string
		promoStyle    string
		internalLinks string
		externalLinks string
		imageTone     string
		imageProvider string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a marketing article from keywords",
		Long: `Generate runs the full pipeline: source extraction, LLM drafting,
link insertion, SEO scoring, cover image generation, and export to HTML,
DOCX, and analytics JSON.

Examples:
  draftsmith generate --keywords "email marketing,automation" --sections 5
  draftsmith generate --keywords "crm tips" --tone casual --promotion MailForge --promo-style "CTA only"
  draftsmith generate --keywords "seo basics" --links "keyword research: /guides/keywords"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kws := splitList(keywords)
			if len(kws) == 0 {
				return fmt.Errorf("--keywords is required")
			}

			req := core.GenerationRequest{
				Keywords:         kws,
				SourceURLs:       sources,
				Language:         language,
				Tone:             tone,
				Focus:            focus,
				Sections:         sections,
				WordTarget:       wordTarget,
				Promotion:        promotion,
				PromotionalStyle: promoStyle,
				InternalLinks:    internalLinks,
				ExternalLinks:    externalLinks,
				ImageTone:        imageTone,
				ImageProvider:    imageProvider,
				RequestedAt:      time.Now(),
			}

			runner, err := pipeline.New(config.Get(), pipeline.WithProgress(printProgress))
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "comma-separated target keywords, first is primary (required)")
	cmd.Flags().StringArrayVarP(&sources, "source", "s", nil, "source URL to ground the article in (repeatable)")
	cmd.Flags().StringVar(&language, "language", "English", "output language")
	cmd.Flags().StringVar(&tone, "tone", "professional", "writing tone (professional, casual, friendly, authoritative, storytelling, domain-expert)")
	cmd.Flags().StringVar(&focus, "focus", "", "optional angle for the article")
	cmd.Flags().IntVar(&sections, "sections", 5, "number of article sections")
	cmd.Flags().IntVar(&wordTarget, "words", 1200, "approximate word target")
	cmd.Flags().StringVar(&promotion, "promotion", "", "promotable project name (see 'draftsmith serve' /api/promotions)")
	cmd.Flags().StringVar(&promoStyle, "promo-style", "", `promotion placement: "No Promotion", "CTA only", "Full Section + CTA"`)
	cmd.Flags().StringVar(&internalLinks, "links", "", `internal links as "anchor text: /url" entries, newline or comma separated`)
	cmd.Flags().StringVar(&externalLinks, "external-links", "", "external resources to reference, one per line")
	cmd.Flags().StringVar(&imageTone, "image-tone", "professional", "cover image style (professional, warm, playful, dark, elegant)")
	cmd.Flags().StringVar(&imageProvider, "image-provider", "", "image provider override (openai, seedream)")

	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printProgress(stage pipeline.Stage, message string) {
	fmt.Printf("  [%s] %s\n", stage, message)
}

func printResult(result *core.GenerationResult) {
	draft := result.Draft
	fmt.Printf("\n%s\n", draft.Title)
	fmt.Printf("  words: %d  sections: %d  model: %s\n", draft.TotalWordCount, len(draft.Sections), draft.ModelUsed)
	if result.SEO != nil {
		fmt.Printf("  seo score: %d/100", result.SEO.Score)
		if len(result.SEO.Recommendations) > 0 {
			fmt.Printf("  (%d recommendations)", len(result.SEO.Recommendations))
		}
		fmt.Println()
	}
	if result.Cover != nil {
		if result.Cover.IsPlaceholder {
			fmt.Printf("  cover: placeholder (%s)\n", result.Cover.Reason)
		} else {
			fmt.Printf("  cover: %s via %s\n", result.Cover.LocalPath, result.Cover.Provider)
		}
	}
	for format, path := range result.Exports {
		fmt.Printf("  %s: %s\n", format, path)
	}
}
