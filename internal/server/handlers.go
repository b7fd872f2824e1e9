package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gexlabs/docverify/internal/audit"
	"github.com/gexlabs/docverify/internal/extract"
	"github.com/gexlabs/docverify/internal/pipeline"
	"github.com/gexlabs/docverify/internal/plausibility"
)

const maxUploadBytes = 32 << 20

// handleOCR serves one document-type endpoint. The extract func binds the
// concrete pipeline stage; the handler owns upload plumbing and the
// response envelope.
func (s *Server) handleOCR(doc string, extractFn func(ctx context.Context, content []byte) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, filename, ok := s.readUpload(w, r)
		if !ok {
			return
		}
		s.logger.Info("server.ocr.request", "doc", doc, "filename", filename, "bytes", len(content))
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":   "success",
			"filename": filename,
			"data":     extractFn(r.Context(), content),
		})
	}
}

func (s *Server) certificateJSON(ctx context.Context, content []byte) any {
	return s.processor.Certificate(ctx, content)
}

func (s *Server) invoiceJSON(ctx context.Context, content []byte) any {
	return s.processor.Invoice(ctx, content)
}

func (s *Server) agreementJSON(ctx context.Context, content []byte) any {
	return s.processor.Agreement(ctx, content)
}

func (s *Server) termSheetJSON(ctx context.Context, content []byte) any {
	return s.processor.TermSheet(ctx, content)
}

// readUpload fetches the "file" part and enforces the PDF extension rule.
// On failure the error response is already written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (content []byte, filename string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Missing file upload.")
		return nil, "", false
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		s.writeError(w, http.StatusBadRequest, "Invalid file type. Only PDF files are supported.")
		return nil, "", false
	}

	content, err = io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing document: %v", err))
		return nil, "", false
	}
	return content, header.Filename, true
}

// checkRequest is the cross-document check contract: four extracted
// records plus the plant the transaction belongs to.
type checkRequest struct {
	PoS       *extract.CertificateRecord `json:"pos"`
	TermSheet *extract.TermSheetRecord   `json:"termsheet"`
	PPA       *extract.AgreementRecord   `json:"ppa"`
	Invoice   *extract.InvoiceRecord     `json:"invoice"`
	PlantID   string                     `json:"plant_id"`
}

func (s *Server) handlePlausibilityCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	verdict, err := s.checker.Check(plausibility.Documents{
		PoS:       req.PoS,
		TermSheet: req.TermSheet,
		PPA:       req.PPA,
		Invoice:   req.Invoice,
		PlantID:   req.PlantID,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Plausibility check failed: %v", err))
		return
	}

	s.saveVerdict(r.Context(), req.PlantID, verdict)
	s.writeJSON(w, http.StatusOK, verdict)
}

// handleVerify runs the whole pipeline: four uploaded PDFs in, one verdict
// with its extracted records out.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(4 * maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return
	}

	in := pipeline.TransactionInput{PlantID: r.FormValue("plant_id")}
	for _, part := range []struct {
		field string
		dst   *[]byte
	}{
		{"pos", &in.PoS},
		{"termsheet", &in.TermSheet},
		{"ppa", &in.PPA},
		{"invoice", &in.Invoice},
	} {
		file, header, err := r.FormFile(part.field)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s upload.", part.field))
			return
		}
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			file.Close()
			s.writeError(w, http.StatusBadRequest, "Invalid file type. Only PDF files are supported.")
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing document: %v", err))
			return
		}
		*part.dst = content
	}

	result, err := s.processor.VerifyTransaction(r.Context(), in)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Verification failed: %v", err))
		return
	}

	s.saveVerdict(r.Context(), in.PlantID, result.Verdict)
	s.writeJSON(w, http.StatusOK, result)
}

// saveVerdict records the verdict for the audit trail. Persistence failure
// never fails the request.
func (s *Server) saveVerdict(ctx context.Context, plantID string, v *plausibility.Verdict) {
	if s.store == nil || v == nil {
		return
	}
	if plantID == "" {
		plantID = "PLANT-001"
	}
	if _, err := s.store.Save(ctx, plantID, v); err != nil {
		s.logger.Error("server.audit_save_error", "plant_id", plantID, "error", err)
	}
}

func (s *Server) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Listing verifications failed: %v", err))
		return
	}
	if recs == nil {
		recs = []audit.Verification{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"verifications": recs, "count": len(recs)})
}

func (s *Server) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Verification not found.")
			return
		}
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Loading verification failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	data, err := s.exporter.VerificationsXLSX(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Report generation failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="verifications.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("server.write_report_error", "error", err)
	}
}
