// Package promo holds the catalog of in-house projects that generated
// articles can promote. The catalog is static; the HTTP layer exposes it so
// clients can populate a picker.
package promo

import "strings"

// Project is one promotable product with the copy the prompt builder needs.
type Project struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"` // One line, used in pickers
	Context string `json:"context"` // Paragraph fed to the prompt when selected
	URL     string `json:"url"`
}

// Styles are the supported promotion placements.
var Styles = []string{"No Promotion", "CTA only", "Full Section + CTA"}

var catalog = []Project{
	{
		Name:    "MailForge",
		Tagline: "Email automation for small teams",
		Context: "MailForge is an email automation platform built for teams under ten people. It ships with behavior-based segmentation, a visual sequence builder, and revenue attribution out of the box, at a flat price with no per-subscriber fees.",
		URL:     "/products/mailforge",
	},
	{
		Name:    "Draftsmith Studio",
		Tagline: "AI-assisted article drafting",
		Context: "Draftsmith Studio turns keyword briefs into publish-ready articles. Writers keep full editorial control while the studio handles research digests, SEO scoring, and export to any CMS.",
		URL:     "/products/studio",
	},
	{
		Name:    "Funnelscope",
		Tagline: "Conversion analytics without the spreadsheet",
		Context: "Funnelscope tracks every step from first visit to closed deal and shows where prospects drop off. Setup is a single script tag; reports are readable by marketers, not just analysts.",
		URL:     "/products/funnelscope",
	},
	{
		Name:    "Linkyard",
		Tagline: "Internal linking on autopilot",
		Context: "Linkyard scans a content library and suggests internal links with anchor text that fits the surrounding sentence, keeping topical clusters connected as the library grows.",
		URL:     "/products/linkyard",
	},
}

// Catalog returns all promotable projects.
func Catalog() []Project {
	out := make([]Project, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a project by name, case-insensitively.
func Lookup(name string) (Project, bool) {
	for _, p := range catalog {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}

// ValidStyle reports whether the given promotional style is supported.
func ValidStyle(style string) bool {
	for _, s := range Styles {
		if s == style {
			return true
		}
	}
	return false
}
