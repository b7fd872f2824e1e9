package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexlabs/docverify/internal/audit"
	"github.com/gexlabs/docverify/internal/export"
	"github.com/gexlabs/docverify/internal/extract"
	"github.com/gexlabs/docverify/internal/ocr"
	"github.com/gexlabs/docverify/internal/pipeline"
	"github.com/gexlabs/docverify/internal/plausibility"
	"github.com/gexlabs/docverify/internal/refine"
)

func sp(s string) *string { return &s }

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Init(context.Background()))

	checker := plausibility.NewChecker(plausibility.Config{}, logger)
	processor := pipeline.New(
		ocr.NewExtractor(ocr.Config{}, logger),
		ocr.DefaultLayout(),
		refine.NewRefiner(refine.Config{Enabled: false}, logger),
		checker,
		logger,
	)
	return New(processor, checker, store, export.NewService(store, logger), logger)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRootListsEndpoints(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "operational", body["status"])
	assert.Contains(t, body, "endpoints")
}

func TestCORSPreflight(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/ocr/pos", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOCRRejectsNonPDF(t *testing.T) {
	h := testServer(t).Handler()
	buf, contentType := multipartUpload(t, "file", "document.txt", []byte("plain text"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/pos", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid file type. Only PDF files are supported.", body["detail"])
}

func TestOCRRejectsMissingFile(t *testing.T) {
	h := testServer(t).Handler()
	buf, contentType := multipartUpload(t, "wrong_field", "document.pdf", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/invoice", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOCRUnreadablePDFStillSucceeds(t *testing.T) {
	// Acquisition is total: garbage bytes produce an empty record, not an
	// error response.
	h := testServer(t).Handler()
	buf, contentType := multipartUpload(t, "file", "scan.pdf", []byte("not really a pdf"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/termsheet", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string          `json:"status"`
		Filename string          `json:"filename"`
		Data     json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "scan.pdf", body.Filename)
	assert.NotEmpty(t, body.Data)
}

func validCheckRequest() checkRequest {
	return checkRequest{
		PoS: &extract.CertificateRecord{
			Certificate: extract.CertificateInfo{
				PosID:     sp("POS-2025-0001"),
				Scheme:    sp("ISCC EU"),
				IssueDate: sp("2025-05-01"),
				Validity:  sp("25 Years"),
			},
			Parties: extract.CertificateParties{Supplier: sp("GreenFuel GmbH"), Recipient: sp("Nordic Power AS")},
			GHG:     extract.GHGInfo{CILCA: sp("-51.2"), CILimit: sp("-49.5"), Unit: "gCO2e/MJ"},
		},
		TermSheet: &extract.TermSheetRecord{
			Identifiers:    extract.TermSheetIdentifiers{TSID: sp("TS-2025-0042")},
			Parties:        extract.TermSheetParties{Seller: sp("GreenFuel GmbH"), Buyer: sp("Nordic Power AS")},
			Sustainability: extract.TermSheetSustainability{CITarget: sp("≤ -49.5 gCO2/MJ"), Scheme: sp("ISCC EU")},
		},
		PPA: &extract.AgreementRecord{
			Parties: extract.AgreementParties{
				Seller: extract.NamedParty{Name: sp("GreenFuel GmbH")},
				Buyer:  extract.NamedParty{Name: sp("Nordic Power AS")},
			},
			KeyTerms: extract.KeyTerms{
				ProjectID:        sp("PPA-GF-NP-2025"),
				EffectiveDate:    sp("2025-06-01"),
				MonthlyPlan:      sp("300.0"),
				MonthlyTolerance: sp("±5%"),
			},
			Pricing: extract.Pricing{PriceY1Y5: sp("1500")},
			Sustainability: extract.Sustainability{
				CILimit:       sp("≤ -49.5 gCO2/MJ"),
				Certification: sp("ISCC EU or REDcert EU"),
			},
			Commencement: extract.Commencement{LongStopDate: sp("2028-03-30")},
		},
		Invoice: &extract.InvoiceRecord{
			Identifiers: extract.InvoiceIdentifiers{InvoiceNo: sp("INV-2025-014"), PaymentDue: sp("2025-07-31")},
			Parties:     extract.InvoiceParties{Supplier: sp("GreenFuel GmbH"), Buyer: sp("Nordic Power AS")},
			ProductAmount: extract.ProductAmount{
				Product:   sp("HVO (ISCC EU)"),
				Quantity:  sp("298.5"),
				UnitPrice: sp("1500.00"),
			},
		},
		PlantID: "PLANT-007",
	}
}

func TestPlausibilityCheckEndpoint(t *testing.T) {
	h := testServer(t).Handler()

	raw, err := json.Marshal(validCheckRequest())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plausibility/check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var verdict plausibility.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.True(t, verdict.IsValid)
	assert.NotNil(t, verdict.SealHash)
	assert.Len(t, verdict.Checks, 6)
}

func TestPlausibilityCheckMissingDocument(t *testing.T) {
	h := testServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plausibility/check",
		bytes.NewReader([]byte(`{"plant_id":"PLANT-001"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlausibilityCheckPersistsVerification(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	raw, err := json.Marshal(validCheckRequest())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plausibility/check", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/verifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count         int                  `json:"count"`
		Verifications []audit.Verification `json:"verifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "PLANT-007", body.Verifications[0].PlantID)
	assert.True(t, body.Verifications[0].IsValid)
}

func TestGetVerificationNotFound(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/verifications/missing-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyMissingUpload(t *testing.T) {
	h := testServer(t).Handler()
	buf, contentType := multipartUpload(t, "pos", "pos.pdf", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing termsheet upload.", body["detail"])
}

func TestVerificationsReportIsXLSX(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/verifications/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}
