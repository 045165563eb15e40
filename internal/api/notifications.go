package api

import "net/http"

// GET /api/notifications
func (s *HTTPServer) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	inbox, err := s.deps.Notifications.List(r.Context(), actorFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inbox)
}

// POST /api/notifications/{id}/read
func (s *HTTPServer) handleReadNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Notifications.MarkRead(r.Context(), actorFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/notifications/read-all
func (s *HTTPServer) handleReadAllNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Notifications.MarkAllRead(r.Context(), actorFrom(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket upgrades the connection and streams the events the user may
// see.
// GET /api/ws
func (s *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, codeInternal, "Canal em tempo real indisponível.")
		return
	}
	s.deps.Hub.ServeWS(w, r, actorFrom(r))
}
