// Package refine sends pattern-extracted records to an LLM for correction.
// Refinement is best effort: any failure returns the initial record with
// its llm_refined flag false.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gexlabs/docverify/internal/extract"
)

const (
	defaultEndpoint        = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	defaultModel           = "gemini-2.0-flash"
	defaultTimeout         = 30 * time.Second
	defaultMaxOutputTokens = 4096
	defaultTemperature     = 0.1
)

type Config struct {
	Enabled         bool
	Endpoint        string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	Temperature     float64
}

type Refiner struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewRefiner(cfg Config, logger *slog.Logger) *Refiner {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enabled reports whether refinement will actually run. A missing API key
// disables it regardless of configuration.
func (r *Refiner) Enabled() bool {
	return r != nil && r.cfg.Enabled && r.cfg.APIKey != ""
}

// Refine corrects one extracted record. The model receives the document
// text and the initial extraction, and must answer with the same JSON
// structure. The answer is schema-validated before it replaces the record;
// on any failure the initial record is returned unchanged.
func Refine[T any](ctx context.Context, r *Refiner, doc Document, initial *T, view extract.TextView) *T {
	if !r.Enabled() {
		return initial
	}

	refined, err := r.refineJSON(ctx, doc, initial, view.Active())
	if err != nil {
		r.logger.Warn("refine.fallback", "doc", doc.Name, "error", err)
		return initial
	}

	out := new(T)
	if err := json.Unmarshal(refined, out); err != nil {
		r.logger.Warn("refine.fallback", "doc", doc.Name, "error", fmt.Errorf("decode refined record: %w", err))
		return initial
	}
	if rec, ok := any(out).(interface {
		SetProvenance(raw string, structured *string, refined bool)
	}); ok {
		rec.SetProvenance(view.Raw, view.Structured, true)
	}
	return out
}

func (r *Refiner) refineJSON(ctx context.Context, doc Document, initial any, text string) ([]byte, error) {
	initialJSON, err := stripProvenance(initial)
	if err != nil {
		return nil, fmt.Errorf("encode initial extraction: %w", err)
	}

	prompt := buildPrompt(doc, text, initialJSON)
	answer, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer = stripFences(answer)
	if err := validateAgainstSchema(doc.Schema, []byte(answer)); err != nil {
		return nil, fmt.Errorf("refined %s record: %w", doc.Name, err)
	}
	return []byte(answer), nil
}

// stripProvenance drops the text and refinement bookkeeping before the
// record is shown to the model.
func stripProvenance(record any) (string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}
	delete(m, "raw_text")
	delete(m, "structured_text")
	delete(m, "llm_refined")
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func buildPrompt(doc Document, text, initialJSON string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert at extracting structured data from %s documents.\n\n", doc.Title)
	fmt.Fprintf(&b, "Extract data from this %s:\n\nRAW TEXT:\n---\n%s\n---\n\n", doc.Title, text)
	fmt.Fprintf(&b, "INITIAL EXTRACTION:\n---\n%s\n---\n\n", initialJSON)
	b.WriteString("Provide a CORRECTED extraction in the EXACT same JSON structure.\n\nINSTRUCTIONS:\n")
	for i, ins := range doc.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ins)
	}
	b.WriteString("\nReturn ONLY the corrected JSON, no explanations.")
	return b.String()
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
