package client

import (
	"context"
	"sync"

	"github.com/seckatie/moohub/internal/core"
	"github.com/sirupsen/logrus"
)

// Cache is the set of resource stores for one user. A Cache is never reused
// for another user; the Hub replaces it instead.
type Cache struct {
	UserID    string
	Posts     *PostStore
	Memos     *MemoStore
	Bookmarks *BookmarkStore
}

func newCache(api *API, userID string) *Cache {
	c := &Cache{
		UserID:    userID,
		Posts:     &PostStore{},
		Memos:     &MemoStore{},
		Bookmarks: &BookmarkStore{},
	}
	c.Posts.init(api)
	c.Memos.init(api)
	c.Bookmarks.init(api)
	return c
}

func (c *Cache) detach() {
	c.Posts.detach()
	c.Memos.detach()
	c.Bookmarks.detach()
}

// Hub owns the current Cache and swaps it whenever the signed-in user
// changes.
type Hub struct {
	api *API
	log *logrus.Entry

	mu       sync.Mutex
	cache    *Cache
	observed bool
}

func NewHub(api *API, log *logrus.Entry) *Hub {
	if log == nil {
		log = core.DiscardLogger()
	}
	return &Hub{api: api, log: log, cache: newCache(api, "")}
}

// Cache returns the stores for the current user.
func (h *Hub) Cache() *Cache {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cache
}

// Observe records the session's user id ("" when signed out). The first
// observation without a user resets the stores; after that any change of
// user discards the cache. Stores of a discarded cache are detached, so a
// load still in flight for the previous user cannot fill the new one.
func (h *Hub) Observe(userID string) *Cache {
	h.mu.Lock()
	defer h.mu.Unlock()

	first := !h.observed
	h.observed = true
	if (first && userID == "") || userID != h.cache.UserID {
		h.log.Debugf("Session user changed from %q to %q, discarding cache", h.cache.UserID, userID)
		h.cache.detach()
		h.cache = newCache(h.api, userID)
	}
	return h.cache
}

// Sync asks the server who is signed in and observes the answer.
func (h *Hub) Sync(ctx context.Context) (*Cache, error) {
	user, err := h.api.Session(ctx)
	if err != nil {
		return nil, err
	}
	userID := ""
	if user != nil {
		userID = user.ID
	}
	return h.Observe(userID), nil
}
