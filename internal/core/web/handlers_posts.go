package web

import (
	"net/http"

	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
)

func (ws *Server) listPosts(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	posts, err := ws.db.ListPosts(r.Context(), sess.UserID)
	if err != nil {
		ws.writeDBError(w, err, "list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (ws *Server) getPost(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	post, err := ws.db.GetPost(r.Context(), sess.UserID, r.PathValue("id"))
	if err != nil {
		ws.writeDBError(w, err, "get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (ws *Server) createPost(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.NewPost
	if !decodeJSON(w, r, &in) {
		return
	}
	post, err := ws.db.CreatePost(r.Context(), sess.UserID, in)
	if err != nil {
		ws.writeDBError(w, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (ws *Server) updatePost(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.PostPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	post, err := ws.db.UpdatePost(r.Context(), sess.UserID, r.PathValue("id"), in)
	if err != nil {
		ws.writeDBError(w, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (ws *Server) deletePost(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if err := ws.db.DeletePost(r.Context(), sess.UserID, r.PathValue("id")); err != nil {
		ws.writeDBError(w, err, "delete post")
		return
	}
	writeSuccess(w)
}
