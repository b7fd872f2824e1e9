package ocr

import (
	"context"
	"log/slog"
	"strings"
)

// Config controls text acquisition for uploaded PDFs.
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	// MinTextLen is the minimum text-layer length below which the document is
	// treated as image-only and routed through OCR. Default 100.
	MinTextLen int
}

// WordBox is one OCR-detected token with its position on the page.
// Ordering of boxes is not guaranteed; see Layout for reconstruction.
type WordBox struct {
	Text       string
	Left       int
	Top        int
	Width      int
	Height     int
	Confidence float64
	Page       int
}

// TextResult is the outcome of text acquisition. Method records which path
// produced the text; Warnings record recovered failures so callers can tell
// "nothing in the document" apart from "the extraction subsystem degraded".
type TextResult struct {
	Text     string
	Boxes    []WordBox
	Method   string // "pdf-text" | "pdf-ocr" | "none"
	Pages    int
	Warnings []string
}

// Degraded reports whether acquisition recovered from at least one failure.
func (r TextResult) Degraded() bool { return len(r.Warnings) > 0 }

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 100
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract reads the PDF text layer and, when that yields too little content,
// falls back to rasterization + per-word OCR. It never returns an error: any
// failure is recorded in Warnings and the pipeline continues on whatever text
// was recovered, possibly none.
func (e *Extractor) Extract(ctx context.Context, content []byte) TextResult {
	res := TextResult{Method: "none"}

	text, pages, err := e.pdfText(content)
	if err != nil {
		e.logger.Warn("pdf text layer read failed", "error", err)
		res.Warnings = append(res.Warnings, "text layer: "+err.Error())
	}
	if len(strings.TrimSpace(text)) >= e.cfg.MinTextLen {
		res.Text = text
		res.Pages = pages
		res.Method = "pdf-text"
		return res
	}

	ocrText, boxes, ocrPages, warns := e.pdfOCR(ctx, content)
	res.Warnings = append(res.Warnings, warns...)
	if ocrText == "" && len(boxes) == 0 {
		// keep whatever the text layer gave us, even below threshold
		res.Text = text
		res.Pages = pages
		if text != "" {
			res.Method = "pdf-text"
		}
		return res
	}
	res.Text = ocrText
	res.Boxes = boxes
	res.Pages = ocrPages
	res.Method = "pdf-ocr"
	return res
}
