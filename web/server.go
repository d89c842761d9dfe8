// Package web exposes the sync API consumed by the table UI: Harvest reads,
// Toggl reads, and the import endpoint.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/markdavies/harvest-toggl-sync/config"
	"github.com/markdavies/harvest-toggl-sync/harvest"
	"github.com/markdavies/harvest-toggl-sync/output"
	"github.com/markdavies/harvest-toggl-sync/submitter"
	"github.com/markdavies/harvest-toggl-sync/timeentry"
	"github.com/markdavies/harvest-toggl-sync/toggl"
)

type Server struct {
	harvest harvest.Client
	toggl   toggl.Client
	submit  *submitter.Service
	cfg     config.Config
	log     zerolog.Logger

	router chi.Router
}

type importRequest struct {
	Entries        []timeentry.Entry `json:"entries"`
	WorkspaceID    int64             `json:"workspaceId"`
	ProjectMapping map[string]int64  `json:"projectMapping"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(
	harvestClient harvest.Client,
	togglClient toggl.Client,
	submitService *submitter.Service,
	cfg config.Config,
	log zerolog.Logger,
) http.Handler {
	server := &Server{
		harvest: harvestClient,
		toggl:   togglClient,
		submit:  submitService,
		cfg:     cfg,
		log:     log,
	}

	router := chi.NewRouter()
	router.Use(recoverJSON(log))
	router.Use(accessLog(log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/status", server.handleStatus)
		r.Get("/harvest/entries", server.handleHarvestEntries)
		r.Get("/harvest/projects", server.handleHarvestProjects)
		r.Get("/toggl/workspaces", server.handleTogglWorkspaces)
		r.Get("/toggl/projects", server.handleTogglProjects)
		r.Post("/toggl/import", server.handleTogglImport)
		r.Get("/export", server.handleExport)
	})
	server.router = router

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Status())
}

func (s *Server) handleHarvestEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.harvest.ListTimeEntries(r.Context(), from, to)
	if err != nil {
		s.upstreamError(w, "list harvest entries", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHarvestProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.harvest.ListProjects(r.Context())
	if err != nil {
		s.upstreamError(w, "list harvest projects", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleTogglWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.toggl.ListWorkspaces(r.Context())
	if err != nil {
		s.upstreamError(w, "list toggl workspaces", err)
		return
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (s *Server) handleTogglProjects(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("workspaceId"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "workspaceId query parameter is required")
		return
	}
	workspaceID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || workspaceID <= 0 {
		writeError(w, http.StatusBadRequest, "workspaceId must be a positive integer")
		return
	}

	projects, err := s.toggl.ListProjects(r.Context(), workspaceID)
	if err != nil {
		s.upstreamError(w, "list toggl projects", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleTogglImport(w http.ResponseWriter, r *http.Request) {
	var body importRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Boundary validation happens before any upstream call is made.
	if body.Entries == nil {
		writeError(w, http.StatusBadRequest, "entries array is required")
		return
	}
	if body.WorkspaceID == 0 {
		writeError(w, http.StatusBadRequest, "workspaceId is required")
		return
	}
	for _, entry := range body.Entries {
		if err := entry.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	mapping := timeentry.ProjectMapping(body.ProjectMapping)
	if mapping == nil {
		mapping = timeentry.ProjectMapping{}
	}

	results, err := s.submit.Import(r.Context(), body.Entries, body.WorkspaceID, mapping)
	if err != nil {
		s.upstreamError(w, "import entries", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writer, err := output.WriterForFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.harvest.ListTimeEntries(r.Context(), from, to)
	if err != nil {
		s.upstreamError(w, "list harvest entries", err)
		return
	}

	filename := fmt.Sprintf("harvest-entries-%s-%s.%s", from, to, writer.Extension())
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := writer.Write(w, entries); err != nil {
		// Headers are already gone at this point; log and give up.
		s.log.Error().Err(err).Msg("write export")
	}
}

func (s *Server) upstreamError(w http.ResponseWriter, action string, err error) {
	s.log.Error().Err(err).Msg(action)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func dateRangeParams(r *http.Request) (from, to string, err error) {
	from = strings.TrimSpace(r.URL.Query().Get("from"))
	to = strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		return "", "", errors.New(`both "from" and "to" query parameters are required`)
	}
	if _, parseErr := timeentry.ParseDate(from); parseErr != nil {
		return "", "", errors.New("invalid from date (expected YYYY-MM-DD)")
	}
	if _, parseErr := timeentry.ParseDate(to); parseErr != nil {
		return "", "", errors.New("invalid to date (expected YYYY-MM-DD)")
	}
	return from, to, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
