package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"draftsmith/internal/core"
	"draftsmith/internal/llm"
	"draftsmith/internal/seo"
)

// NewSEOCmd creates the standalone SEO scoring command.
func NewSEOCmd() *cobra.Command {
	var (
		keywords string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "seo <article.md>",
		Short: "Score an existing markdown article",
		Long: `SEO parses a markdown article (one '# ' title, '## ' sections) and
prints its SEO report: keyword density, Flesch readability, title and meta
checks, structure balance, and prioritized recommendations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading article: %w", err)
			}

			req := core.GenerationRequest{Keywords: splitList(keywords)}
			draft, err := llm.ParseDraft(string(raw), req)
			if err != nil {
				return fmt.Errorf("parsing article: %w", err)
			}

			report := seo.Analyze(draft)
			if asJSON {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "comma-separated target keywords, first is primary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func printReport(report *core.SEOReport) {
	fmt.Printf("SEO score: %d/100\n\n", report.Score)
	fmt.Printf("Title (%d chars, optimal %v): %s\n", report.Title.Length, report.Title.OptimalLength, report.Title.Text)
	fmt.Printf("Meta  (%d chars, optimal %v)\n", report.Meta.Length, report.Meta.OptimalLength)
	fmt.Printf("Readability: %.1f Flesch (%s)\n", report.Readability.FleschScore, report.Readability.ReadingLevel)
	fmt.Printf("Primary keyword %q: %d uses, %.2f%% density\n",
		report.FocusKeyword, report.Keywords.PrimaryCount, report.Keywords.PrimaryDensity)
	fmt.Printf("Structure: %d sections, balance %s\n", report.Structure.TotalSections, report.Structure.Balance)

	if len(report.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
	if len(report.LSISuggestions) > 0 {
		fmt.Printf("\nRelated terms to consider: %v\n", report.LSISuggestions)
	}
}
