// Package pipeline runs one document from PDF bytes to a typed record, and
// one transaction from four documents to a plausibility verdict.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gexlabs/docverify/internal/extract"
	"github.com/gexlabs/docverify/internal/ocr"
	"github.com/gexlabs/docverify/internal/plausibility"
	"github.com/gexlabs/docverify/internal/refine"
)

type Processor struct {
	ocr     *ocr.Extractor
	layout  ocr.Layout
	refiner *refine.Refiner
	checker *plausibility.Checker
	logger  *slog.Logger
}

func New(extractor *ocr.Extractor, layout ocr.Layout, refiner *refine.Refiner, checker *plausibility.Checker, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ocr:     extractor,
		layout:  layout,
		refiner: refiner,
		checker: checker,
		logger:  logger,
	}
}

// textView acquires a document's text. When word boxes exist, the layout
// reconstruction becomes the preferred extraction text.
func (p *Processor) textView(ctx context.Context, content []byte) extract.TextView {
	res := p.ocr.Extract(ctx, content)
	view := extract.TextView{Raw: res.Text}
	if len(res.Boxes) > 0 {
		structured := p.layout.Structure(res.Boxes)
		view.Structured = &structured
	}
	if res.Degraded() {
		p.logger.Warn("pipeline.ocr_degraded", "method", res.Method, "warnings", res.Warnings)
	}
	return view
}

// Certificate processes a PoS certificate PDF.
func (p *Processor) Certificate(ctx context.Context, content []byte) *extract.CertificateRecord {
	view := p.textView(ctx, content)
	rec := extract.Certificate(view)
	return refine.Refine(ctx, p.refiner, refine.CertificateDoc, rec, view)
}

// Invoice processes a delivery invoice PDF.
func (p *Processor) Invoice(ctx context.Context, content []byte) *extract.InvoiceRecord {
	view := p.textView(ctx, content)
	rec := extract.Invoice(view)
	return refine.Refine(ctx, p.refiner, refine.InvoiceDoc, rec, view)
}

// Agreement processes a power purchase agreement PDF.
func (p *Processor) Agreement(ctx context.Context, content []byte) *extract.AgreementRecord {
	view := p.textView(ctx, content)
	rec := extract.Agreement(view)
	return refine.Refine(ctx, p.refiner, refine.AgreementDoc, rec, view)
}

// TermSheet processes a term sheet PDF.
func (p *Processor) TermSheet(ctx context.Context, content []byte) *extract.TermSheetRecord {
	view := p.textView(ctx, content)
	rec := extract.TermSheet(view)
	return refine.Refine(ctx, p.refiner, refine.TermSheetDoc, rec, view)
}

// TransactionInput carries the four PDFs of one transaction.
type TransactionInput struct {
	PoS       []byte
	TermSheet []byte
	PPA       []byte
	Invoice   []byte
	PlantID   string
}

// TransactionResult bundles the extracted records with the verdict.
type TransactionResult struct {
	PoS       *extract.CertificateRecord `json:"pos"`
	TermSheet *extract.TermSheetRecord   `json:"termsheet"`
	PPA       *extract.AgreementRecord   `json:"ppa"`
	Invoice   *extract.InvoiceRecord     `json:"invoice"`
	Verdict   *plausibility.Verdict      `json:"verdict"`
}

// VerifyTransaction extracts all four documents concurrently and runs the
// cross-document checks on the results.
func (p *Processor) VerifyTransaction(ctx context.Context, in TransactionInput) (*TransactionResult, error) {
	if len(in.PoS) == 0 || len(in.TermSheet) == 0 || len(in.PPA) == 0 || len(in.Invoice) == 0 {
		return nil, fmt.Errorf("pipeline: all four documents are required")
	}

	out := &TransactionResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.PoS = p.Certificate(gctx, in.PoS)
		return nil
	})
	g.Go(func() error {
		out.TermSheet = p.TermSheet(gctx, in.TermSheet)
		return nil
	})
	g.Go(func() error {
		out.PPA = p.Agreement(gctx, in.PPA)
		return nil
	})
	g.Go(func() error {
		out.Invoice = p.Invoice(gctx, in.Invoice)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	verdict, err := p.checker.Check(plausibility.Documents{
		PoS:       out.PoS,
		TermSheet: out.TermSheet,
		PPA:       out.PPA,
		Invoice:   out.Invoice,
		PlantID:   in.PlantID,
	})
	if err != nil {
		return nil, err
	}
	out.Verdict = verdict
	return out, nil
}
