package extract

import "strings"

// placeholder is the private-use glyph tesseract emits for unresolved
// characters; inside identifiers and dates it almost always stands for a
// hyphen.
const placeholder = "■"

// unicodeMinus appears in CI values on typeset documents.
const unicodeMinus = "−"

func trimmed(s string) string { return strings.TrimSpace(s) }

// cleanGlyphs normalizes OCR artifacts to ASCII hyphens.
func cleanGlyphs(s string) string {
	s = strings.ReplaceAll(s, placeholder, "-")
	s = strings.ReplaceAll(s, unicodeMinus, "-")
	return s
}

// stripThousands removes thousands separators from money amounts, keeping
// the decimal point.
func stripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// stripSpaces joins digit groups OCR split apart ("817 971" -> "817971").
func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func lowercase(s string) string { return strings.ToLower(s) }

func containsFold(lowerText, term string) bool {
	return strings.Contains(lowerText, strings.ToLower(term))
}

// appendYears rebuilds the "<n> years" phrase from a bare digit capture.
func appendYears(s string) string { return s + " years" }
