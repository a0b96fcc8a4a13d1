package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/seckatie/moohub/internal/core"
	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/db"
	"github.com/seckatie/moohub/internal/core/widgets"
	"github.com/sirupsen/logrus"
)

// Options wires the server's collaborators. OAuth and Refresher are nil when
// Google sign-in is not configured; the login routes then answer 503.
type Options struct {
	DB        *db.DB
	Sessions  *auth.Sessions
	OAuth     *auth.Provider
	Refresher auth.TokenRefresher
	Widgets   *widgets.Service
	Metrics   *Metrics
	Log       *logrus.Entry
}

type Server struct {
	db        *db.DB
	sessions  *auth.Sessions
	oauth     *auth.Provider
	refresher auth.TokenRefresher
	widgets   *widgets.Service
	metrics   *Metrics
	log       *logrus.Entry
}

func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = core.DiscardLogger()
	}
	return &Server{
		db:        opts.DB,
		sessions:  opts.Sessions,
		oauth:     opts.OAuth,
		refresher: opts.Refresher,
		widgets:   opts.Widgets,
		metrics:   opts.Metrics,
		log:       log,
	}
}

// Handler returns the fully routed and instrumented handler.
func (ws *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	ws.registerRoutes(mux)
	return ws.instrument(mux)
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, ws *Server) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: ws.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		ws.log.Infof("Starting web server at %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	ws.log.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), core.DefaultShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (ws *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", ws.handleHealth)
	if ws.metrics != nil {
		mux.Handle("GET /metrics", ws.metrics.Handler())
	}

	// Identity
	mux.HandleFunc("GET /api/session", ws.handleSession)
	mux.HandleFunc("GET /auth/login", ws.handleLogin)
	mux.HandleFunc("GET /auth/callback", ws.handleCallback)
	mux.HandleFunc("POST /auth/logout", ws.handleLogout)

	// Blog posts
	mux.HandleFunc("GET /api/blog", ws.authed(ws.listPosts))
	mux.HandleFunc("POST /api/blog", ws.authed(ws.createPost))
	mux.HandleFunc("GET /api/blog/{id}", ws.authed(ws.getPost))
	mux.HandleFunc("PATCH /api/blog/{id}", ws.authed(ws.updatePost))
	mux.HandleFunc("DELETE /api/blog/{id}", ws.authed(ws.deletePost))

	// Memos
	mux.HandleFunc("GET /api/memo", ws.authed(ws.listMemos))
	mux.HandleFunc("POST /api/memo", ws.authed(ws.createMemo))
	mux.HandleFunc("PATCH /api/memo/{id}", ws.authed(ws.updateMemo))
	mux.HandleFunc("DELETE /api/memo/{id}", ws.authed(ws.deleteMemo))

	// Bookmarks
	mux.HandleFunc("GET /api/bookmarks", ws.authed(ws.getBookmarkTree))
	mux.HandleFunc("POST /api/bookmarks/folders", ws.authed(ws.createFolder))
	mux.HandleFunc("PUT /api/bookmarks/folders/order", ws.authed(ws.reorderFolders))
	mux.HandleFunc("PATCH /api/bookmarks/folders/{id}", ws.authed(ws.updateFolder))
	mux.HandleFunc("DELETE /api/bookmarks/folders/{id}", ws.authed(ws.deleteFolder))
	mux.HandleFunc("PUT /api/bookmarks/folders/{id}/order", ws.authed(ws.reorderBookmarks))
	mux.HandleFunc("POST /api/bookmarks/items", ws.authed(ws.createBookmark))
	mux.HandleFunc("PATCH /api/bookmarks/items/{id}", ws.authed(ws.updateBookmark))
	mux.HandleFunc("DELETE /api/bookmarks/items/{id}", ws.authed(ws.deleteBookmark))

	// Widgets
	mux.HandleFunc("GET /api/widgets", ws.handleWidgets)
	mux.HandleFunc("GET /api/rss", ws.handleNews)
	mux.HandleFunc("GET /api/stocks", ws.handleStocks)
	mux.HandleFunc("GET /api/exchange", ws.handleExchange)
	mux.HandleFunc("GET /api/weather", ws.handleWeather)
	mux.HandleFunc("GET /api/calendar", ws.authed(ws.handleCalendar))
}

func (ws *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
