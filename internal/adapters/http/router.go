package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
	"github.com/munidigital/tramites-assistant/internal/core/ports"
	"github.com/munidigital/tramites-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	query     ports.QueryService
	stats     ports.StatisticsService
	sessions  ports.SessionManager
	feedback  ports.FeedbackService
	ingestor  ports.DocumentIngestor
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	metrics   *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
}

type RouterDeps struct {
	Query     ports.QueryService
	Stats     ports.StatisticsService
	Sessions  ports.SessionManager
	Feedback  ports.FeedbackService
	Ingestor  ports.DocumentIngestor
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage
	Metrics   *metrics.HTTPServerMetrics

	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		query:          deps.Query,
		stats:          deps.Stats,
		sessions:       deps.Sessions,
		feedback:       deps.Feedback,
		ingestor:       deps.Ingestor,
		documents:      deps.Documents,
		storage:        deps.Storage,
		metrics:        deps.Metrics,
		rateLimitRPS:   deps.RateLimitRPS,
		rateLimitBurst: deps.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/rag/stats", rt.ragStats)
	mux.HandleFunc("/v1/sessions", rt.sessionsCollection)
	mux.HandleFunc("/v1/sessions/", rt.sessionByID)
	mux.HandleFunc("/v1/feedback", rt.submitFeedback)
	mux.HandleFunc("/v1/feedback/metrics", rt.feedbackMetrics)
	mux.HandleFunc("/v1/feedback/", rt.updateFeedback)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, 64, 200*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	out, err := rt.query.Execute(r.Context(), domain.QueryInput{
		Query:     req.Query,
		SessionID: req.SessionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		// Canned command answers carry a document label but no sources.
		if out.DocumentName != "" && len(out.Sources) == 0 {
			rt.metrics.RecordCommandHit(serviceName, out.DocumentName)
		} else {
			rt.metrics.RecordRAGObservation(serviceName, "/v1/rag/query", len(out.Sources), time.Since(start))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) ragStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	out, err := rt.stats.Execute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		// Upload may fail after the record was stored (queue down); the
		// caller still learns the document id.
		if doc != nil && domain.IsKind(err, domain.ErrTemporary) {
			writeJSON(w, http.StatusAccepted, map[string]any{
				"document": doc,
				"warning":  "processing enqueue failed, will retry",
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch action {
	case "":
		doc, err := rt.documents.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case "download":
		rt.downloadDocument(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := rt.documents.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	reader, err := rt.storage.Open(r.Context(), doc.StoragePath)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrNotFound, "open stored file", err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(doc.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		slog.Warn("document_download_aborted", "document_id", id, "error", err)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
