package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/logging"
	"github.com/JonMunkholm/vetimport/internal/source"
	"github.com/JonMunkholm/vetimport/internal/web/views"
)

// multipartOverhead is allowed on top of IMPORT_MAX_FILE_SIZE for form framing.
const multipartOverhead = 1 << 20

const defaultRunsLimit = 20

// handleImport runs an uploaded extract synchronously and returns its run.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, core.ErrFileTooLarge)
			return
		}
		s.respondError(w, r, errNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	rows, err := source.ReadRows(file, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import requested", "file", header.Filename, "size", header.Size)

	run, err := s.service.Import(r.Context(), header.Filename, rows)
	if run == nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(core.ContextWithImportID(r.Context(), run.ID), "file", header.Filename).
		Info("import finished", "status", run.Status, "summary", run.Summary)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, importResponse{ImportRun: *run, UserError: userMessage(err)})
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{ImportRun: *run})
}

// importResponse is a run plus the mapped error of a failed import.
type importResponse struct {
	core.ImportRun
	UserError *core.UserMessage `json:"user_error,omitempty"`
}

func userMessage(err error) *core.UserMessage {
	msg := core.MapError(err)
	return &msg
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.service.Runs(limit))
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.Run(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// pathParam returns the decoded value of a route parameter. chi routes on
// RawPath when the request path holds escaped characters such as %2F, and
// then hands back the still-escaped segment.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadKey, err)
	}
	return decoded, nil
}

func (s *Server) handleVeteran(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	detail, err := s.service.Veteran(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	templ.Handler(views.Dashboard(counts, s.service.Runs(defaultRunsLimit))).ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.service.LimiterStatus(),
	})
}
