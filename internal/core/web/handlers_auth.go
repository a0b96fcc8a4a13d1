package web

import (
	"errors"
	"net/http"

	"github.com/seckatie/moohub/internal/core/db"
)

// handleSession reports the signed-in user, or null. It never fails: an
// invalid cookie or a user that no longer exists reads as signed out.
func (ws *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := ws.sessions.Current(r)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	user, err := ws.db.GetUser(r.Context(), sess.UserID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			ws.log.Errorf("Failed to load session user %s: %v", sess.UserID, err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (ws *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if ws.oauth == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	ws.oauth.HandleLogin(w, r)
}

func (ws *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if ws.oauth == nil {
		writeError(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	ws.oauth.HandleCallback(w, r)
}

func (ws *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	ws.sessions.Clear(w)
	writeSuccess(w)
}
