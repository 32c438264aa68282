package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kirillkom/question-paper-analyzer/internal/config"
	"github.com/kirillkom/question-paper-analyzer/internal/core/domain"
	"github.com/kirillkom/question-paper-analyzer/internal/core/ports"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/question-paper-analyzer/internal/infrastructure/notify"
)

const uploadField = "file"

type MarkdownRenderer interface {
	Block(source string) (string, error)
	Inline(source string) (string, error)
}

type Exporter interface {
	Write(w io.Writer, filename string, result *domain.ClassificationResult, summary domain.SummaryState) error
}

type NoticeInbox interface {
	Drain() []notify.Notice
}

type MetricsProvider interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// Dependencies are the optional collaborators of the router. A nil field
// disables the routes or features that need it.
type Dependencies struct {
	Renderer MarkdownRenderer
	Exporter Exporter
	Inbox    NoticeInbox
	Metrics  MetricsProvider
	Logger   *slog.Logger
}

type Router struct {
	cfg      config.Config
	analyzer ports.AnalyzerService
	deps     Dependencies
	logger   *slog.Logger
}

func NewRouter(cfg config.Config, analyzer ports.AnalyzerService, deps Dependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		analyzer: analyzer,
		deps:     deps,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.deps.Metrics != nil {
		mux.Handle("GET /metrics", rt.deps.Metrics.Handler())
	}
	mux.HandleFunc("POST /v1/upload", rt.upload)
	mux.HandleFunc("GET /v1/view", rt.view)
	mux.HandleFunc("POST /v1/groups/{category}/toggle", rt.toggleGroup)
	mux.HandleFunc("POST /v1/groups/{category}/select", rt.selectQuestion)
	mux.HandleFunc("GET /v1/sessions/{id}", rt.getSession)
	mux.HandleFunc("POST /v1/sessions/{id}/{action}", rt.sessionAction)
	mux.HandleFunc("GET /v1/notices", rt.notices)
	mux.HandleFunc("GET /v1/export.xlsx", rt.export)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes())
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("file exceeds %d MB", rt.cfg.MaxUploadMB)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read uploaded file"})
		return
	}

	flowID, err := rt.analyzer.SelectFile(domain.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadResponse{
		FlowID:     flowID,
		Filename:   header.Filename,
		StatusText: domain.UploadUploading.StatusText(),
	})
}

func (rt *Router) view(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.renderPage(rt.analyzer.View()))
}

func (rt *Router) toggleGroup(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseCategorySlug(r.PathValue("category"))
	if !ok {
		rt.writeError(w, r, unknownCategory(r.PathValue("category")))
		return
	}
	group, err := rt.analyzer.ToggleGroup(category)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.renderGroup(group))
}

func (rt *Router) selectQuestion(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseCategorySlug(r.PathValue("category"))
	if !ok {
		rt.writeError(w, r, unknownCategory(r.PathValue("category")))
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	session, err := rt.analyzer.SelectQuestion(category, req.Question)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt.renderSession(session))
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := rt.analyzer.Session(r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.renderSession(session))
}

func (rt *Router) sessionAction(w http.ResponseWriter, r *http.Request) {
	var transition func(string) (domain.SessionView, error)
	switch r.PathValue("action") {
	case "solution":
		transition = rt.analyzer.ChooseSolution
	case "video":
		transition = rt.analyzer.ChooseVideo
	case "dismiss":
		transition = rt.analyzer.Dismiss
	case "close":
		transition = rt.analyzer.CloseSession
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session action"})
		return
	}

	session, err := transition(r.PathValue("id"))
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidTransition) {
			rendered := rt.renderSession(session)
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Session: &rendered})
			return
		}
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.renderSession(session))
}

func (rt *Router) notices(w http.ResponseWriter, _ *http.Request) {
	if rt.deps.Inbox == nil {
		writeJSON(w, http.StatusOK, noticesResponse{Notices: []notify.Notice{}})
		return
	}
	writeJSON(w, http.StatusOK, noticesResponse{Notices: rt.deps.Inbox.Drain()})
}

func (rt *Router) export(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Exporter == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "export is not enabled"})
		return
	}
	filename := rt.analyzer.View().Filename
	result, summary := rt.analyzer.Snapshot()

	var buf bytes.Buffer
	if err := rt.deps.Exporter.Write(&buf, filename, result, summary); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func unknownCategory(slug string) error {
	return domain.WrapError(domain.ErrNotFound, "group", fmt.Errorf("unknown category %q", slug))
}

func exportName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "questions"
	}
	return base + "-questions.xlsx"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
