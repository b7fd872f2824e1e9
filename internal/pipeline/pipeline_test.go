package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexlabs/docverify/internal/ocr"
	"github.com/gexlabs/docverify/internal/plausibility"
	"github.com/gexlabs/docverify/internal/refine"
)

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(
		ocr.NewExtractor(ocr.Config{}, logger),
		ocr.DefaultLayout(),
		refine.NewRefiner(refine.Config{Enabled: false}, logger),
		plausibility.NewChecker(plausibility.Config{}, logger),
		logger,
	)
}

func TestVerifyTransactionRequiresAllDocuments(t *testing.T) {
	p := testProcessor(t)
	_, err := p.VerifyTransaction(context.Background(), TransactionInput{
		PoS:     []byte("x"),
		PPA:     []byte("x"),
		Invoice: []byte("x"),
	})
	assert.Error(t, err)
}

func TestVerifyTransactionUnreadableDocumentsStillVerdicts(t *testing.T) {
	// Garbage bytes extract to empty records; the checks then fail with
	// parse details instead of erroring out.
	p := testProcessor(t)
	res, err := p.VerifyTransaction(context.Background(), TransactionInput{
		PoS:       []byte("a"),
		TermSheet: []byte("b"),
		PPA:       []byte("c"),
		Invoice:   []byte("d"),
		PlantID:   "PLANT-001",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Verdict)
	assert.False(t, res.Verdict.IsValid)
	assert.Len(t, res.Verdict.Checks, 6)
	assert.Nil(t, res.Verdict.SealHash)
}

func TestCertificateFromUnreadablePDFIsTotal(t *testing.T) {
	p := testProcessor(t)
	rec := p.Certificate(context.Background(), []byte("not a pdf"))
	require.NotNil(t, rec)
	assert.False(t, rec.LLMRefined)
}
