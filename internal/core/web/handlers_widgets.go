package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/seckatie/moohub/internal/core/auth"
	"github.com/seckatie/moohub/internal/core/widgets"
)

func (ws *Server) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, widgets.All())
}

func (ws *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	items, err := ws.widgets.News(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		ws.writeWidgetError(w, err, "news")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleStocks always answers 200; failed indices carry a "-" value.
func (ws *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	quotes, err := ws.widgets.Stocks(r.Context())
	if err != nil {
		ws.writeWidgetError(w, err, "stocks")
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (ws *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	rates, err := ws.widgets.Exchange(r.Context())
	if err != nil {
		ws.writeWidgetError(w, err, "exchange")
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (ws *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	weather, err := ws.widgets.Weather(r.Context())
	if err != nil {
		ws.writeWidgetError(w, err, "weather")
		return
	}
	writeJSON(w, http.StatusOK, weather)
}

// handleCalendar reads the user's calendar with the session's OAuth token,
// refreshing it first. A refreshed token is written back into the cookie.
func (ws *Server) handleCalendar(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	if sess.Token == nil {
		writeError(w, http.StatusUnauthorized, "No calendar access token")
		return
	}

	q := widgets.CalendarQuery{
		TimeMin: r.URL.Query().Get("timeMin"),
		TimeMax: r.URL.Query().Get("timeMax"),
	}
	if raw := r.URL.Query().Get("maxResults"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "maxResults must be a positive integer")
			return
		}
		q.MaxResults = n
	}

	token := sess.Token
	if ws.refresher != nil {
		fresh, err := ws.refresher.Refresh(r.Context(), token)
		if err != nil {
			ws.log.Warnf("Token refresh failed for user %s: %v", sess.UserID, err)
			writeError(w, http.StatusUnauthorized, "Session expired, sign in again")
			return
		}
		if auth.TokenChanged(token, fresh) {
			sess.Token = fresh
			if err := ws.sessions.Issue(w, sess); err != nil {
				ws.log.Errorf("Failed to re-issue session for user %s: %v", sess.UserID, err)
			}
		}
		token = fresh
	}

	events, err := ws.widgets.Calendar(r.Context(), token, q)
	if err != nil {
		ws.writeWidgetError(w, err, "calendar")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (ws *Server) writeWidgetError(w http.ResponseWriter, err error, widget string) {
	switch {
	case errors.Is(err, widgets.ErrUnknownCategory), errors.Is(err, widgets.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, widgets.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, widgets.ErrUpstream):
		ws.log.Warnf("Upstream failure for %s widget: %v", widget, err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		ws.log.Errorf("Failed to load %s widget: %v", widget, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
