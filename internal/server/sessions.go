package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/lineage/internal/session"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// StepResponse is returned by every session step.
type StepResponse struct {
	Moved bool         `json:"moved"`
	View  session.View `json:"view"`
}

type openRequest struct {
	PersonID types.ID `json:"person_id"`
	UnionID  types.ID `json:"union_id"`
}

type partnerRequest struct {
	PartnerID types.ID `json:"partner_id"`
}

type parentsRequest struct {
	Side int `json:"side"`
}

type childRequest struct {
	ChildID types.ID `json:"child_id"`
}

type offsetRequest struct {
	Offset int `json:"offset"`
}

func (s *Server) registerSessions(r chi.Router) {
	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/", s.withSession(func(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
			writeJSON(w, http.StatusOK, sess.View())
		}))
		r.Delete("/", s.handleCloseSession)
		r.Get("/history", s.withSession(func(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
			entries, pos := sess.History()
			writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "position": pos})
		}))
		r.Post("/open", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			var req openRequest
			if !decodeBody(w, r, &req) {
				return
			}
			if !req.PersonID.Valid() && !req.UnionID.Valid() {
				writeError(w, http.StatusBadRequest, "bad_request", "person_id or union_id required")
				return
			}
			view, moved := sess.Open(req.PersonID, req.UnionID)
			step(w, view, moved)
		}))
		r.Post("/back", s.withSession(func(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
			view, moved := sess.Back()
			step(w, view, moved)
		}))
		r.Post("/forward", s.withSession(func(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
			view, moved := sess.Forward()
			step(w, view, moved)
		}))
		r.Post("/unions/next", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			var req partnerRequest
			if decodeBody(w, r, &req) {
				view, moved := sess.NextUnion(req.PartnerID)
				step(w, view, moved)
			}
		}))
		r.Post("/unions/previous", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			var req partnerRequest
			if decodeBody(w, r, &req) {
				view, moved := sess.PreviousUnion(req.PartnerID)
				step(w, view, moved)
			}
		}))
		r.Post("/parents", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			req := parentsRequest{Side: 1}
			if decodeBody(w, r, &req) {
				view, moved := sess.Parents(req.Side)
				step(w, view, moved)
			}
		}))
		r.Post("/child", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			var req childRequest
			if decodeBody(w, r, &req) {
				view, moved := sess.Child(req.ChildID)
				step(w, view, moved)
			}
		}))
		r.Put("/children-offset", s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
			var req offsetRequest
			if decodeBody(w, r, &req) {
				writeJSON(w, http.StatusOK, sess.SetChildrenOffset(req.Offset))
			}
		}))
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.sessions.New()
	view := sess.View()
	if req.PersonID.Valid() || req.UnionID.Valid() {
		view, _ = sess.Open(req.PersonID, req.UnionID)
	}
	s.logger.Info("session created", "session", sess.ID())
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) withSession(fn func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "sid"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		fn(w, r, sess)
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}

func step(w http.ResponseWriter, view session.View, moved bool) {
	writeJSON(w, http.StatusOK, StepResponse{Moved: moved, View: view})
}
