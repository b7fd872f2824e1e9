// Package server exposes the document verification pipeline over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gexlabs/docverify/internal/audit"
	"github.com/gexlabs/docverify/internal/export"
	"github.com/gexlabs/docverify/internal/pipeline"
	"github.com/gexlabs/docverify/internal/plausibility"
)

const version = "1.0.0"

type Server struct {
	processor *pipeline.Processor
	checker   *plausibility.Checker
	store     *audit.Store
	exporter  *export.Service
	logger    *slog.Logger
}

func New(processor *pipeline.Processor, checker *plausibility.Checker, store *audit.Store, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		checker:   checker,
		store:     store,
		exporter:  exporter,
		logger:    logger,
	}
}

// Handler builds the route table with CORS applied to every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/ocr/pos", s.handleOCR("pos", s.certificateJSON))
	mux.HandleFunc("POST /api/v1/ocr/invoice", s.handleOCR("invoice", s.invoiceJSON))
	mux.HandleFunc("POST /api/v1/ocr/ppa", s.handleOCR("ppa", s.agreementJSON))
	mux.HandleFunc("POST /api/v1/ocr/termsheet", s.handleOCR("termsheet", s.termSheetJSON))

	mux.HandleFunc("POST /api/v1/plausibility/check", s.handlePlausibilityCheck)
	mux.HandleFunc("POST /api/v1/verify", s.handleVerify)

	mux.HandleFunc("GET /api/v1/verifications", s.handleListVerifications)
	mux.HandleFunc("GET /api/v1/verifications/report", s.handleReport)
	mux.HandleFunc("GET /api/v1/verifications/{id}", s.handleGetVerification)

	return corsMiddleware(mux)
}

// corsMiddleware allows any origin, matching the permissive policy of the
// upstream services this API replaces.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("server.encode_response_error", "error", err)
	}
}

// writeError mirrors the {"detail": ...} error body clients of the previous
// service already parse.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "Document Verification API",
		"version": version,
		"status":  "operational",
		"endpoints": map[string]string{
			"pos":          "/api/v1/ocr/pos",
			"invoice":      "/api/v1/ocr/invoice",
			"ppa":          "/api/v1/ocr/ppa",
			"termsheet":    "/api/v1/ocr/termsheet",
			"plausibility": "/api/v1/plausibility/check",
			"verify":       "/api/v1/verify",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "Document Verification API"})
}
