// Package handlers wires the CLI commands.
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"draftsmith/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "draftsmith",
		Short: "Generate SEO-ready marketing articles from keywords and sources",
		Long: `Draftsmith - AI Marketing Article Generator

Turns keyword briefs into publish-ready articles: drafts sections with an
LLM, grounds them in extracted source pages, scores SEO, generates a cover
image, and exports HTML, DOCX, and an analytics report.

Examples:
  # Generate an article from keywords
  draftsmith generate --keywords "email marketing,automation"

  # Ground the article in source pages
  draftsmith generate --keywords "email marketing" \
    --source https://example.com/study --source https://example.com/guide

  # Score an existing markdown article
  draftsmith seo article.md --keywords "email marketing"

  # Extract readable content from a URL
  draftsmith extract https://example.com/article

  # Run the HTTP API
  draftsmith serve`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .draftsmith.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewExtractCmd())
	rootCmd.AddCommand(NewSEOCmd())
	rootCmd.AddCommand(NewServeCmd())

	cobra.OnInitialize(initConfig)

	return rootCmd
}

// initConfig reads the config file and environment variables.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		// Keep going; environment variables may be enough.
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
