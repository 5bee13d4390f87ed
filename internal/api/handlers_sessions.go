package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/extractor"
	"github.com/dgallion1/tenderdoc/internal/session"
	"github.com/go-chi/chi/v5"
)

type ctxKey int

const sessionKey ctxKey = iota

// sessionCtx resolves {sessionID} and stores the session in the request
// context.
func (s *Server) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		sess := s.sessions.Get(id)
		if sess == nil {
			jsonError(w, "session not found", http.StatusNotFound)
			return
		}
		sess.Touch()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey).(*session.Session)
	return sess
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":    sess.ID,
		"max_questions": s.sessions.MaxQuestions(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Reset()
	s.log.Info("session reset", "session_id", sess.ID)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleAttachDocument uploads, parses and attaches a tender document.
func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	hash := extractor.ContentHashHex(up.data)
	if cur := sess.Snapshot().Document; cur != nil && cur.ContentHash == hash {
		doc := sess.Document()
		writeJSON(w, http.StatusOK, map[string]any{
			"reused":   true,
			"message":  documentMessage(len(doc.Sections)),
			"document": doc,
		})
		return
	}

	doc, ok := s.parseUpload(w, up)
	if !ok {
		return
	}
	reused := sess.AttachDocument(up.filename, hash, doc)
	s.log.Info("document attached",
		"session_id", sess.ID,
		"filename", up.filename,
		"content_hash", hash,
		"reused", reused,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"reused":            reused,
		"message":           documentMessage(len(doc.Sections)),
		"document":          doc,
		"selected_sections": sess.Snapshot().Selected,
	})
}

func documentMessage(found int) string {
	return fmt.Sprintf("document processed, %d of %d sections found", found, catalog.Len())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc := sessionFrom(r).Document()
	if doc == nil {
		jsonError(w, "no document attached", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type selectSectionsRequest struct {
	Sections []string `json:"sections"`
}

func (s *Server) handleSelectSections(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req selectSectionsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Sections == nil {
		jsonError(w, "sections is required", http.StatusBadRequest)
		return
	}

	if err := sess.SelectSections(req.Sections); err != nil {
		if errors.Is(err, session.ErrUnknownSection) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"selected_sections": snap.Selected,
		"knowledge_items":   len(snap.Knowledge),
		"question_count":    snap.QuestionCount,
		"max_questions":     snap.MaxQuestions,
	})
}
