package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
)

// authedHandler is a handler that runs only with a valid session.
type authedHandler func(w http.ResponseWriter, r *http.Request, sess auth.Session)

// authed rejects requests without a session, or whose user no longer
// exists, with 401.
func (ws *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := ws.sessions.Current(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, err := ws.db.GetUser(r.Context(), sess.UserID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ws.log.Errorf("Failed to load session user %s: %v", sess.UserID, err)
			writeError(w, http.StatusInternalServerError, "Failed to load session")
			return
		}
		h(w, r, sess)
	}
}

// writeJSON writes v with the JSON content-type header. Encoding errors are
// not recoverable once the header is out, so they are dropped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeJSON reads a size-limited JSON body into v. Unknown fields are
// ignored. It writes the 4xx response itself and reports whether decoding
// succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, core.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// writeDBError maps database errors onto status codes. Anything unexpected is
// logged and reported as a 500 without details.
func (ws *Server) writeDBError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, db.ErrFolderNotFound):
		writeError(w, http.StatusNotFound, "Folder not found")
	case errors.Is(err, db.ErrInvalidStatus),
		errors.Is(err, db.ErrInvalidOrder),
		errors.Is(err, db.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		ws.log.Errorf("Failed to %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
