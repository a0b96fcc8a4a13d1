package web

import (
	"net/http"

	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
)

func (ws *Server) listMemos(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	memos, err := ws.db.ListMemos(r.Context(), sess.UserID)
	if err != nil {
		ws.writeDBError(w, err, "list memos")
		return
	}
	writeJSON(w, http.StatusOK, memos)
}

func (ws *Server) createMemo(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.NewMemo
	if !decodeJSON(w, r, &in) {
		return
	}
	memo, err := ws.db.CreateMemo(r.Context(), sess.UserID, in)
	if err != nil {
		ws.writeDBError(w, err, "create memo")
		return
	}
	writeJSON(w, http.StatusCreated, memo)
}

func (ws *Server) updateMemo(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.MemoPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	memo, err := ws.db.UpdateMemo(r.Context(), sess.UserID, r.PathValue("id"), in)
	if err != nil {
		ws.writeDBError(w, err, "update memo")
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

func (ws *Server) deleteMemo(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if err := ws.db.DeleteMemo(r.Context(), sess.UserID, r.PathValue("id")); err != nil {
		ws.writeDBError(w, err, "delete memo")
		return
	}
	writeSuccess(w)
}
