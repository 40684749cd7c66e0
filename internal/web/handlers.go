package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/stardustkit/cataloguer/internal/artifact"
	"github.com/stardustkit/cataloguer/internal/catalogue"
	"github.com/stardustkit/cataloguer/internal/fluxunit"
	"github.com/stardustkit/cataloguer/internal/ingest"
	"github.com/stardustkit/cataloguer/internal/logging"
	"github.com/stardustkit/cataloguer/internal/writer"
)

// createCatalogueRequest is the body of POST /api/catalogues.
type createCatalogueRequest struct {
	Name            string  `json:"name"`
	Unit            string  `json:"unit,omitempty"` // defaults to the configured unit
	EazyTranslation bool    `json:"eazy_translation,omitempty"`
	MissingSentinel *float64 `json:"missing_sentinel,omitempty"`
}

// catalogueResponse describes one catalogue session.
type catalogueResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Path            string   `json:"path"`
	Unit            string   `json:"unit"`
	EazyTranslation bool     `json:"eazy_translation"`
	Targets         int      `json:"targets"`
	Columns         []string `json:"columns"`
}

// targetRequest is the body of POST .../targets.
type targetRequest struct {
	ID  int64   `json:"id"`
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
	Z   float64 `json:"z"`
}

// observationRequest is the body of POST .../observations. Exactly one of
// Code and Wavelength must be set.
type observationRequest struct {
	TargetID   int64    `json:"target_id"`
	Label      string   `json:"label"`
	Flux       float64  `json:"flux"`
	FluxError  float64  `json:"flux_error"`
	Unit       string   `json:"unit"`
	Code       *int     `json:"code,omitempty"`
	Wavelength *float64 `json:"wavelength,omitempty"`
}

// loadResultResponse reports a CSV ingestion outcome.
type loadResultResponse struct {
	Processed int             `json:"processed"`
	Applied   int             `json:"applied"`
	Failed    []failedRowInfo `json:"failed,omitempty"`
}

type failedRowInfo struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"catalogues": s.sessions.Len(),
	})
}

func (s *Server) handleCreateCatalogue(w http.ResponseWriter, r *http.Request) {
	var req createCatalogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	unitName := req.Unit
	if unitName == "" {
		unitName = s.cfg.Catalogue.DefaultUnit
	}
	unit, err := fluxunit.Parse(unitName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	cat, err := catalogue.New(catalogue.Params{
		Name:            req.Name,
		Path:            filepath.Join(s.cfg.Catalogue.DataRoot, req.Name),
		Unit:            unit,
		EazyTranslation: req.EazyTranslation,
		MissingSentinel: req.MissingSentinel,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	session, err := s.sessions.Add(cat)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// The registry has rejected duplicate names by now, so clearing stale
	// artifacts cannot touch another live catalogue's bundle.
	if err := writer.PrepareDirectory(cat.Path(), cat.Name()); err != nil {
		s.sessions.Remove(session.ID)
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("catalogue created",
		"catalogue_id", session.ID,
		"name", cat.Name(),
		"unit", cat.Unit().String(),
	)
	respondJSON(w, http.StatusCreated, sessionResponse(session))
}

func (s *Server) handleListCatalogues(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.List()
	out := make([]catalogueResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionResponse(session))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCatalogue(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(session))
}

func (s *Server) handleDeleteCatalogue(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Remove(chi.URLParam(r, "catalogueID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var summary string
	session.WithCatalogue(func(c *catalogue.Catalogue) error {
		summary = c.Summary()
		return nil
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, summary+"\n")
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	err = session.WithCatalogue(func(c *catalogue.Catalogue) error {
		return c.CreateTarget(req.ID, req.RA, req.Dec, req.Z)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": req.ID})
}

func (s *Server) handleAddObservation(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	// The zero Filter stands for "neither or both" and is rejected by the
	// catalogue with its ambiguous-binding error.
	var filter catalogue.Filter
	switch {
	case req.Code != nil && req.Wavelength != nil:
	case req.Code != nil:
		filter = catalogue.Code(*req.Code)
	case req.Wavelength != nil:
		filter = catalogue.Wavelength(*req.Wavelength)
	}

	err = session.WithCatalogue(func(c *catalogue.Catalogue) error {
		return c.AddObservation(req.TargetID, req.Label, req.Flux, req.FluxError, req.Unit, filter)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"target_id": req.TargetID,
		"label":     req.Label,
	})
}

func (s *Server) handleColumnExists(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	label := chi.URLParam(r, "label")
	var exists bool
	session.WithCatalogue(func(c *catalogue.Catalogue) error {
		exists = c.HasColumn(label)
		return nil
	})
	respondJSON(w, http.StatusOK, map[string]any{"label": label, "exists": exists})
}

func (s *Server) handleUploadTargets(w http.ResponseWriter, r *http.Request) {
	s.handleUploadCSV(w, r, ingest.LoadTargets)
}

func (s *Server) handleUploadObservations(w http.ResponseWriter, r *http.Request) {
	s.handleUploadCSV(w, r, ingest.LoadObservations)
}

// handleUploadCSV runs the shared multipart upload flow for both CSV kinds.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request,
	loadFn func(*catalogue.Catalogue, io.Reader) (ingest.Result, error)) {

	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err))
		return
	}
	defer file.Close()

	var res ingest.Result
	err = session.WithCatalogue(func(c *catalogue.Catalogue) error {
		var loadErr error
		res, loadErr = loadFn(c, file)
		return loadErr
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("csv ingested",
		"catalogue_id", session.ID,
		"file", header.Filename,
		"processed", res.Processed,
		"applied", res.Applied,
		"failed", len(res.Failed),
	)

	out := loadResultResponse{Processed: res.Processed, Applied: res.Applied}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, failedRowInfo{Line: f.Line, Error: f.Err.Error()})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var written []string
	err = session.WithCatalogue(func(c *catalogue.Catalogue) error {
		set := artifact.Derive(c)
		var writeErr error
		written, writeErr = writer.WriteBundle(set)
		return writeErr
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	session.SetArtifacts(written)

	logging.FromContext(r.Context()).Info("catalogue saved",
		"catalogue_id", session.ID,
		"artifacts", len(written),
	)
	respondJSON(w, http.StatusOK, map[string]any{"artifacts": written})
}

func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := chi.URLParam(r, "name")
	for _, path := range session.Artifacts() {
		if filepath.Base(path) == name {
			http.ServeFile(w, r, path)
			return
		}
	}
	s.respondError(w, r, fmt.Errorf("artifact not found: %s", name))
}

// session resolves the catalogue session named in the URL.
func (s *Server) session(r *http.Request) (*Session, error) {
	return s.sessions.Get(chi.URLParam(r, "catalogueID"))
}

// sessionResponse snapshots a session for the API.
func sessionResponse(session *Session) catalogueResponse {
	var resp catalogueResponse
	session.WithCatalogue(func(c *catalogue.Catalogue) error {
		resp = catalogueResponse{
			ID:              session.ID,
			Name:            c.Name(),
			Path:            c.Path(),
			Unit:            c.Unit().String(),
			EazyTranslation: c.EazyTranslation(),
			Targets:         c.TargetCount(),
			Columns:         c.Columns(),
		}
		return nil
	})
	return resp
}
