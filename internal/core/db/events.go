package db

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events after posts, memos, folders or bookmarks change.
// Register listeners to react to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnPostPublishedEvent, func(event db.Event) error {
//	    ev := event.(db.PostPublishedEvent)
//	    log.Infof("post %s published at %v", ev.Post.ID, ev.Post.PublishedAt)
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
	// Owner is the id of the user whose data changed.
	Owner() string
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	OnPostCreatedEvent EventKind = iota
	OnPostUpdatedEvent
	// OnPostPublishedEvent is emitted once per post, the first time it
	// leaves draft status.
	OnPostPublishedEvent
	OnPostDeletedEvent
	OnMemoCreatedEvent
	OnMemoUpdatedEvent
	OnMemoDeletedEvent
	OnFolderCreatedEvent
	OnFolderUpdatedEvent
	OnFolderDeletedEvent
	OnFoldersReorderedEvent
	OnBookmarkCreatedEvent
	OnBookmarkUpdatedEvent
	OnBookmarkDeletedEvent
	OnBookmarksReorderedEvent
)

// AllEventKinds lists every kind, for listeners that want them all.
var AllEventKinds = []EventKind{
	OnPostCreatedEvent, OnPostUpdatedEvent, OnPostPublishedEvent, OnPostDeletedEvent,
	OnMemoCreatedEvent, OnMemoUpdatedEvent, OnMemoDeletedEvent,
	OnFolderCreatedEvent, OnFolderUpdatedEvent, OnFolderDeletedEvent, OnFoldersReorderedEvent,
	OnBookmarkCreatedEvent, OnBookmarkUpdatedEvent, OnBookmarkDeletedEvent, OnBookmarksReorderedEvent,
}

func (k EventKind) String() string {
	switch k {
	case OnPostCreatedEvent:
		return "post_created"
	case OnPostUpdatedEvent:
		return "post_updated"
	case OnPostPublishedEvent:
		return "post_published"
	case OnPostDeletedEvent:
		return "post_deleted"
	case OnMemoCreatedEvent:
		return "memo_created"
	case OnMemoUpdatedEvent:
		return "memo_updated"
	case OnMemoDeletedEvent:
		return "memo_deleted"
	case OnFolderCreatedEvent:
		return "folder_created"
	case OnFolderUpdatedEvent:
		return "folder_updated"
	case OnFolderDeletedEvent:
		return "folder_deleted"
	case OnFoldersReorderedEvent:
		return "folders_reordered"
	case OnBookmarkCreatedEvent:
		return "bookmark_created"
	case OnBookmarkUpdatedEvent:
		return "bookmark_updated"
	case OnBookmarkDeletedEvent:
		return "bookmark_deleted"
	case OnBookmarksReorderedEvent:
		return "bookmarks_reordered"
	default:
		return "unknown"
	}
}

type PostCreatedEvent struct{ Post Post }

func (e PostCreatedEvent) Kind() EventKind { return OnPostCreatedEvent }
func (e PostCreatedEvent) Owner() string   { return e.Post.UserID }

type PostUpdatedEvent struct{ Post Post }

func (e PostUpdatedEvent) Kind() EventKind { return OnPostUpdatedEvent }
func (e PostUpdatedEvent) Owner() string   { return e.Post.UserID }

type PostPublishedEvent struct{ Post Post }

func (e PostPublishedEvent) Kind() EventKind { return OnPostPublishedEvent }
func (e PostPublishedEvent) Owner() string   { return e.Post.UserID }

// PostDeletedEvent carries the post as it was before deletion.
type PostDeletedEvent struct{ Post Post }

func (e PostDeletedEvent) Kind() EventKind { return OnPostDeletedEvent }
func (e PostDeletedEvent) Owner() string   { return e.Post.UserID }

type MemoCreatedEvent struct{ Memo Memo }

func (e MemoCreatedEvent) Kind() EventKind { return OnMemoCreatedEvent }
func (e MemoCreatedEvent) Owner() string   { return e.Memo.UserID }

type MemoUpdatedEvent struct{ Memo Memo }

func (e MemoUpdatedEvent) Kind() EventKind { return OnMemoUpdatedEvent }
func (e MemoUpdatedEvent) Owner() string   { return e.Memo.UserID }

type MemoDeletedEvent struct{ Memo Memo }

func (e MemoDeletedEvent) Kind() EventKind { return OnMemoDeletedEvent }
func (e MemoDeletedEvent) Owner() string   { return e.Memo.UserID }

type FolderCreatedEvent struct{ Folder Folder }

func (e FolderCreatedEvent) Kind() EventKind { return OnFolderCreatedEvent }
func (e FolderCreatedEvent) Owner() string   { return e.Folder.UserID }

type FolderUpdatedEvent struct{ Folder Folder }

func (e FolderUpdatedEvent) Kind() EventKind { return OnFolderUpdatedEvent }
func (e FolderUpdatedEvent) Owner() string   { return e.Folder.UserID }

// FolderDeletedEvent also reports how many bookmarks went with the folder.
type FolderDeletedEvent struct {
	Folder           Folder
	BookmarksRemoved int64
}

func (e FolderDeletedEvent) Kind() EventKind { return OnFolderDeletedEvent }
func (e FolderDeletedEvent) Owner() string   { return e.Folder.UserID }

type FoldersReorderedEvent struct {
	UserID    string
	FolderIDs []string
}

func (e FoldersReorderedEvent) Kind() EventKind { return OnFoldersReorderedEvent }
func (e FoldersReorderedEvent) Owner() string   { return e.UserID }

type BookmarkCreatedEvent struct{ Bookmark Bookmark }

func (e BookmarkCreatedEvent) Kind() EventKind { return OnBookmarkCreatedEvent }
func (e BookmarkCreatedEvent) Owner() string   { return e.Bookmark.UserID }

type BookmarkUpdatedEvent struct{ Bookmark Bookmark }

func (e BookmarkUpdatedEvent) Kind() EventKind { return OnBookmarkUpdatedEvent }
func (e BookmarkUpdatedEvent) Owner() string   { return e.Bookmark.UserID }

type BookmarkDeletedEvent struct{ Bookmark Bookmark }

func (e BookmarkDeletedEvent) Kind() EventKind { return OnBookmarkDeletedEvent }
func (e BookmarkDeletedEvent) Owner() string   { return e.Bookmark.UserID }

type BookmarksReorderedEvent struct {
	UserID      string
	FolderID    string
	BookmarkIDs []string
}

func (e BookmarksReorderedEvent) Kind() EventKind { return OnBookmarksReorderedEvent }
func (e BookmarksReorderedEvent) Owner() string   { return e.UserID }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB
// operation has committed.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			db.log.Warnf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
