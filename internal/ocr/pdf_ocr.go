package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// pdfOCR rasterizes each page and runs word-level OCR on it. Every failure is
// collected as a warning; a partially recognized document is still usable.
func (e *Extractor) pdfOCR(ctx context.Context, content []byte) (text string, boxes []WordBox, pages int, warnings []string) {
	tmpDir, err := os.MkdirTemp("", "dv-ocr-*")
	if err != nil {
		return "", nil, 0, []string{err.Error()}
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove ocr temp dir", "dir", tmpDir, "error", err)
		}
	}()

	src := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return "", nil, 0, []string{err.Error()}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", src, prefix)
	if err != nil {
		return "", nil, 0, []string{"pdftoppm: " + string(errb)}
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", nil, 0, []string{"pdftoppm produced no images"}
	}

	var b strings.Builder
	for pageIdx, img := range matches {
		pageBoxes, warn := e.tesseractWords(ctx, img, pageIdx)
		if warn != "" {
			warnings = append(warnings, warn)
			continue
		}
		words := make([]string, 0, len(pageBoxes))
		for _, box := range pageBoxes {
			words = append(words, box.Text)
		}
		b.WriteString(strings.Join(words, " "))
		b.WriteString("\n")
		boxes = append(boxes, pageBoxes...)
	}
	return strings.TrimSpace(b.String()), boxes, len(matches), warnings
}

// tesseractWords runs tesseract in TSV mode and returns one WordBox per
// recognized non-empty token, tagged with the page index.
func (e *Extractor) tesseractWords(ctx context.Context, imgPath string, page int) ([]WordBox, string) {
	// tesseract <file> stdout -l <lang> tsv
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.TesseractLang, "tsv")
	if err != nil {
		return nil, fmt.Sprintf("tesseract page %d: %s", page, string(errb))
	}
	return parseTSV(string(out), page), ""
}

// TSV columns: level page_num block_num par_num line_num word_num
// left top width height conf text
const (
	tsvLeft  = 6
	tsvTop   = 7
	tsvWidth = 8
	tsvHigh  = 9
	tsvConf  = 10
	tsvText  = 11
)

func parseTSV(out string, page int) []WordBox {
	var boxes []WordBox
	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || ln == "" { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		text := strings.TrimSpace(cols[tsvText])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvConf], 64)
		if err != nil || conf < 0 {
			// conf -1 marks layout rows, not words
			continue
		}
		left, _ := strconv.Atoi(cols[tsvLeft])
		top, _ := strconv.Atoi(cols[tsvTop])
		width, _ := strconv.Atoi(cols[tsvWidth])
		height, _ := strconv.Atoi(cols[tsvHigh])
		boxes = append(boxes, WordBox{
			Text:       text,
			Left:       left,
			Top:        top,
			Width:      width,
			Height:     height,
			Confidence: conf,
			Page:       page,
		})
	}
	return boxes
}
