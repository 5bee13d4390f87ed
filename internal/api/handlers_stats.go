package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil || s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":    s.provider.Model(),
		"stats":    s.stats.Snapshot(),
		"sessions": s.sessions.Len(),
	})
}
