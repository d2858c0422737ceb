package adapthttp

import (
	"net/http"
)

func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.agent == nil {
		writeMessage(w, http.StatusNotFound, "agent disabled")
		return
	}

	var body struct {
		ConversationID string `json:"conversationId"`
		Message        string `json:"message"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	reply, err := s.agent.Chat(r.Context(), userFromContext(r.Context()), body.ConversationID, body.Message)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reply": reply})
}
