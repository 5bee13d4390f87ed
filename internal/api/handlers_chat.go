package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/session"
)

type chatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// handleChat streams an answer as server-sent events:
//
//	event: token  data: {"text": "..."}
//	event: error  data: {"error": "...", "code": "..."}
//	event: done   data: {"question_count": n, "max_questions": m}
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		jsonError(w, "chat model not configured", http.StatusServiceUnavailable)
		return
	}
	sess := sessionFrom(r)

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := session.ValidateQuestion(req.Message); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lang := session.ParseLanguage(req.Language)
	for frag, err := range sess.Chat(r.Context(), s.provider, s.log, req.Message, lang) {
		if err != nil {
			writeEvent(w, "error", map[string]string{
				"error": err.Error(),
				"code":  chatErrorCode(err),
			})
			flusher.Flush()
			break
		}
		if writeEvent(w, "token", map[string]string{"text": frag}) != nil {
			// Client went away; stopping the loop cancels the model call.
			return
		}
		flusher.Flush()
	}

	snap := sess.Snapshot()
	writeEvent(w, "done", map[string]any{
		"question_count": snap.QuestionCount,
		"max_questions":  snap.MaxQuestions,
		"limit_reached":  snap.LimitReached,
	})
	flusher.Flush()
}

func chatErrorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrLimitReached):
		return "limit_reached"
	case errors.Is(err, session.ErrBusy):
		return "busy"
	default:
		return "upstream"
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
