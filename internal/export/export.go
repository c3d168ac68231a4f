package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"draftsmith/internal/core"
	"draftsmith/internal/logger"
)

// Exporter writes generation results to disk.
type Exporter struct {
	outputDir string
	now       func() time.Time // Injectable for stable filenames in tests
}

// NewExporter creates an exporter targeting the given directory.
func NewExporter(outputDir string) *Exporter {
	if outputDir == "" {
		outputDir = "exports"
	}
	return &Exporter{outputDir: outputDir, now: time.Now}
}

// ExportAll writes the HTML page, the DOCX file, and the analytics JSON.
// Files are named <slug>_<timestamp>.<ext>; the analytics file carries an
// _analytics suffix. Returns format name -> written path. A failure in one
// format does not stop the others; the last error is returned alongside
// whatever succeeded.
func (e *Exporter) ExportAll(result *core.GenerationResult) (map[string]string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory %s: %w", e.outputDir, err)
	}

	log := logger.Get()
	stamp := e.now().Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", result.Draft.Slug, stamp)
	doc := Build(result.Draft, result.Cover)

	paths := map[string]string{}
	var lastErr error

	htmlPath := filepath.Join(e.outputDir, base+".html")
	if err := e.writeHTML(doc, htmlPath); err != nil {
		log.Error("HTML export failed", "error", err, "path", htmlPath)
		lastErr = err
	} else {
		paths["html"] = htmlPath
	}

	docxPath := filepath.Join(e.outputDir, base+".docx")
	if err := e.writeDOCX(doc, docxPath); err != nil {
		log.Error("DOCX export failed", "error", err, "path", docxPath)
		lastErr = err
	} else {
		paths["docx"] = docxPath
	}

	jsonPath := filepath.Join(e.outputDir, base+"_analytics.json")
	if err := e.writeAnalytics(result, jsonPath); err != nil {
		log.Error("analytics export failed", "error", err, "path", jsonPath)
		lastErr = err
	} else {
		paths["analytics"] = jsonPath
	}

	return paths, lastErr
}

func (e *Exporter) writeHTML(doc *Document, path string) error {
	out, err := RenderHTML(doc)
	if err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

func (e *Exporter) writeDOCX(doc *Document, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating docx file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return RenderDOCX(doc, file)
}

func (e *Exporter) writeAnalytics(result *core.GenerationResult, path string) error {
	report := BuildAnalytics(result)
	out, err := MarshalAnalytics(report)
	if err != nil {
		return fmt.Errorf("marshaling analytics: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
