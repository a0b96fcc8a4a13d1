package core

import "time"

// Post status values used in database and handlers
const (
	PostStatusDraft     = "draft"
	PostStatusPrivate   = "private"
	PostStatusPublished = "published"
)

// Timeout defaults for upstream widget fetches
const (
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Cache and refresh cadences
const (
	UpstreamCacheTTL     = 5 * time.Minute
	UpstreamCacheCleanup = 10 * time.Minute
	AutosaveInterval     = 30 * time.Second
)

// Resource limits
const (
	MaxRequestBodySize = 1 << 20 // 1MB
	MaxNewsItems       = 5
)

// HTTP client configuration
const (
	UserAgent = "Mozilla/5.0 (compatible; moohub/1.0)"
)

// DayBucketLayout is the calendar-day format used for memo dates and
// the to-do reset marker.
const DayBucketLayout = "2006-01-02"

// IsValidPostStatus reports whether s is one of the known post statuses.
func IsValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusPrivate, PostStatusPublished:
		return true
	}
	return false
}
