package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agrocontable/liquidaciones/internal/core/usecase"
	"github.com/agrocontable/liquidaciones/internal/observability/metrics"
)

const serviceName = "api"

// maxUploadBytes caps multipart uploads; settlement PDFs are a few hundred
// kilobytes, so 32 MiB leaves ample headroom.
const maxUploadBytes = 32 << 20

type Router struct {
	ingestUC *usecase.IngestUseCase
	reportUC *usecase.ReportUseCase
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxConcurrent  int
}

type RouterOption func(*Router)

func WithTrafficControl(rps float64, burst, maxConcurrent int) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxConcurrent = maxConcurrent
	}
}

func NewRouter(
	ingestUC *usecase.IngestUseCase,
	reportUC *usecase.ReportUseCase,
	serverMetrics *metrics.HTTPServerMetrics,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		ingestUC: ingestUC,
		reportUC: reportUC,
		metrics:  serverMetrics,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/batches", rt.createBatch)
	mux.HandleFunc("/v1/batches/", rt.batchSubresource)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	batch, err := rt.ingestUC.CreateBatch(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

// batchSubresource dispatches /v1/batches/{batch_id}/{documents|reports|reports.xlsx}.
func (rt *Router) batchSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	batchID, sub, _ := strings.Cut(rest, "/")
	if batchID == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}

	switch sub {
	case "documents":
		rt.uploadDocument(w, r, batchID)
	case "reports":
		rt.getReports(w, r, batchID)
	case "reports.xlsx":
		rt.getWorkbook(w, r, batchID)
	default:
		writeError(w, http.StatusNotFound, "unknown batch resource")
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	role := r.FormValue("role")
	if strings.TrimSpace(role) == "" {
		writeError(w, http.StatusBadRequest, "form field 'role' is required")
		return
	}

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		batchID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		role,
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, string(doc.Role))
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := rt.ingestUC.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	issues, err := rt.reportUC.DocumentIssues(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"issues":   issues,
	})
}

func (rt *Router) getReports(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	tables, err := rt.reportUC.BuildReports(r.Context(), batchID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordReportBuilt(serviceName, "json", time.Since(start))
	}
	writeJSON(w, http.StatusOK, tables)
}

func (rt *Router) getWorkbook(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	out, err := rt.reportUC.Workbook(r.Context(), batchID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordReportBuilt(serviceName, "xlsx", time.Since(start))
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="control_hacienda_`+batchID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
