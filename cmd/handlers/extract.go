package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"draftsmith/internal/config"
	"draftsmith/internal/extract"
)

// NewExtractCmd creates the URL extraction command.
func NewExtractCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "extract <url> [url...]",
		Short: "Extract readable content from web pages",
		Long: `Extract pulls the readable article content out of one or more URLs,
using the reader API with readability and CSS-selector fallbacks. Useful for
previewing what 'generate --source' would feed the model.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := extract.New(config.Get())
			results := extractor.ExtractAll(cmd.Context(), args)

			for _, r := range results {
				fmt.Printf("%s\n", r.URL)
				if !r.Success {
					fmt.Printf("  failed: %s\n\n", r.Error)
					continue
				}
				fmt.Printf("  method: %s\n", r.Method)
				fmt.Printf("  title:  %s\n", r.Title)
				if r.MetaDescription != "" {
					fmt.Printf("  meta:   %s\n", r.MetaDescription)
				}
				if len(r.Keywords) > 0 {
					fmt.Printf("  keywords: %v\n", r.Keywords)
				}
				fmt.Printf("  content: %d chars\n", len(r.MainContent))
				if full {
					fmt.Printf("\n%s\n", r.MainContent)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print the extracted content, not just a summary")
	return cmd
}
