package web

import (
	"net/http"

	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
)

// reorderRequest carries the complete new order of a sibling set.
type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (ws *Server) getBookmarkTree(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	tree, err := ws.db.GetBookmarkTree(r.Context(), sess.UserID)
	if err != nil {
		ws.writeDBError(w, err, "load bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// ------------------------------
// Folders
// ------------------------------

func (ws *Server) createFolder(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.NewFolder
	if !decodeJSON(w, r, &in) {
		return
	}
	folder, err := ws.db.CreateFolder(r.Context(), sess.UserID, in)
	if err != nil {
		ws.writeDBError(w, err, "create folder")
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (ws *Server) updateFolder(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.FolderPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	folder, err := ws.db.UpdateFolder(r.Context(), sess.UserID, r.PathValue("id"), in)
	if err != nil {
		ws.writeDBError(w, err, "update folder")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (ws *Server) deleteFolder(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if err := ws.db.DeleteFolder(r.Context(), sess.UserID, r.PathValue("id")); err != nil {
		ws.writeDBError(w, err, "delete folder")
		return
	}
	writeSuccess(w)
}

func (ws *Server) reorderFolders(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in reorderRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	folders, err := ws.db.ReorderFolders(r.Context(), sess.UserID, in.IDs)
	if err != nil {
		ws.writeDBError(w, err, "reorder folders")
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// ------------------------------
// Bookmarks
// ------------------------------

func (ws *Server) createBookmark(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.NewBookmark
	if !decodeJSON(w, r, &in) {
		return
	}
	bookmark, err := ws.db.CreateBookmark(r.Context(), sess.UserID, in)
	if err != nil {
		ws.writeDBError(w, err, "create bookmark")
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

func (ws *Server) updateBookmark(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in db.BookmarkPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	bookmark, err := ws.db.UpdateBookmark(r.Context(), sess.UserID, r.PathValue("id"), in)
	if err != nil {
		ws.writeDBError(w, err, "update bookmark")
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

func (ws *Server) deleteBookmark(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if err := ws.db.DeleteBookmark(r.Context(), sess.UserID, r.PathValue("id")); err != nil {
		ws.writeDBError(w, err, "delete bookmark")
		return
	}
	writeSuccess(w)
}

// reorderBookmarks rewrites the order of the bookmarks in one folder.
func (ws *Server) reorderBookmarks(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	var in reorderRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	bookmarks, err := ws.db.ReorderBookmarks(r.Context(), sess.UserID, r.PathValue("id"), in.IDs)
	if err != nil {
		ws.writeDBError(w, err, "reorder bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}
