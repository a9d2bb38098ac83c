package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/session"
)

// maxBodyBytes leaves room for JSON escaping around the largest text.
const maxBodyBytes = 4 * huherrors.MaxTextLength

// RawWarning accompanies views of responses that had no valid JSON.
const RawWarning = "The response was not valid JSON; showing raw text."

type textRequest struct {
	Text string `json:"text"`
}

type promoteRequest struct {
	NodeID string `json:"nodeId"`
}

type layoutRequest struct {
	Kind string `json:"kind"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type submitResponse struct {
	View     session.View     `json:"view"`
	Response *ingest.Response `json:"response"`
	Warning  string           `json:"warning,omitempty"`
}

type promoteResponse struct {
	View     session.View `json:"view"`
	Promoted bool         `json:"promoted"`
}

// =============================================================================
// Ingestion
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := huherrors.ValidateText(req.Text); err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.ingestor.Ingest(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	s.logger.Info("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		s.writeError(w, huherrors.New(huherrors.ErrCodeSessionNotFound, "session not found: %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := huherrors.ValidateText(req.Text); err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := sess.Submit(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := submitResponse{View: sess.View(), Response: resp}
	if !resp.IsValidJSON {
		out.Warning = RawWarning
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req promoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	promoted, err := sess.Promote(r.Context(), req.NodeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promoteResponse{View: sess.View(), Promoted: promoted})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req layoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, err := layout.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SetLayout(r.Context(), kind); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := sess.Toggle(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && err != io.EOF {
		s.writeError(w, huherrors.Wrap(huherrors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := huherrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: huherrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
