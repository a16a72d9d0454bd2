// Package httpapi exposes RCIService over the mandatory HTTP surface
// (spec §6.1-§6.3): POST /rag/search, POST /rag/sync, GET /rag/status.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/rcihq/rci/internal/models"
	"github.com/rcihq/rci/internal/rci"
	"github.com/rcihq/rci/internal/rcierr"
)

// Server wraps an RCIService behind the spec's HTTP contract.
type Server struct {
	service *rci.Service
	logger  *log.Logger
	mux     *http.ServeMux
}

// New builds the request handler for service.
func New(service *rci.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{service: service, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /rag/search", s.handleSearch)
	s.mux.HandleFunc("POST /rag/sync", s.handleSync)
	s.mux.HandleFunc("GET /rag/status", s.handleStatus)
	return s
}

// Handler returns the chained handler, wrapped with recover/logging/CORS
// middleware (pkg/mid.Chain style, retargeted at RCI's terse log style).
func (s *Server) Handler() http.Handler {
	return Chain(s.mux, Recover(s.logger), Logger(s.logger), CORS("*"))
}

type searchRequestBody struct {
	Query     string         `json:"query"`
	TopK      int            `json:"topK,omitempty"`
	Threshold float32        `json:"threshold,omitempty"`
	Filters   models.Filters `json:"filters,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "query missing", "")
		return
	}
	if body.TopK != 0 && (body.TopK < 1 || body.TopK > 50) {
		writeError(w, http.StatusBadRequest, "topK out of range", "")
		return
	}
	if body.Threshold != 0 && (body.Threshold < 0 || body.Threshold > 1) {
		writeError(w, http.StatusBadRequest, "threshold out of range", "")
		return
	}

	resp, err := s.service.Search(r.Context(), models.SearchRequest{
		Query: body.Query, TopK: body.TopK, Threshold: body.Threshold, Filters: body.Filters,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

type syncRequestBody struct {
	SourcePath   string   `json:"sourcePath"`
	ForceReindex bool     `json:"forceReindex,omitempty"`
	Packages     []string `json:"packages,omitempty"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var body syncRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if body.SourcePath == "" {
		writeError(w, http.StatusBadRequest, "sourcePath missing", "")
		return
	}

	resp, err := s.service.Sync(r.Context(), models.SyncRequest{
		SourcePath: body.SourcePath, ForceReindex: body.ForceReindex, Packages: body.Packages,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.service.Status())
}

// writeServiceError maps a stable rcierr.Code to its HTTP status (spec §7).
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	code, ok := rcierr.CodeOf(err)
	if !ok {
		s.logger.Printf("unclassified error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	switch code {
	case rcierr.AuthFailed:
		writeError(w, http.StatusUnauthorized, "authentication failure", err.Error())
	case rcierr.QuotaExceeded:
		writeError(w, http.StatusTooManyRequests, "quota exceeded", err.Error())
	case rcierr.ComponentParseError, rcierr.EmbeddingError, rcierr.VectorStoreError, rcierr.SearchError:
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	case rcierr.Cancelled:
		writeError(w, http.StatusServiceUnavailable, "request cancelled", err.Error())
	case rcierr.InitError:
		writeError(w, http.StatusNotFound, "path not found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: msg, Details: details})
}
