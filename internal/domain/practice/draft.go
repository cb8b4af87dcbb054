package practice

import "time"

// Draft is the mutable, uncommitted activity list for one user.
type Draft struct {
	UserID        string     `json:"userId"`
	SessionLength int        `json:"sessionLength"`
	Activities    []Activity `json:"activities"`
}

// Session is an immutable snapshot of a committed Draft.
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Activities    []Activity `json:"activities"`
	TotalDuration int        `json:"totalDuration"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// CachedDraft is the persisted form of a Draft. Timestamp is unix millis.
type CachedDraft struct {
	Activities    []Activity `json:"activities"`
	SessionLength int        `json:"sessionLength"`
	Timestamp     int64      `json:"timestamp"`
	UserID        string     `json:"userId"`
}

func (c CachedDraft) SavedAt() time.Time { return time.UnixMilli(c.Timestamp) }

// Expired reports whether the entry is older than ttl. A non-positive ttl
// never expires.
func (c CachedDraft) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(c.SavedAt()) > ttl
}

const (
	MaxActivityDuration  = 120
	DefaultSessionLength = 60
	MaxSessionLength     = 480
)
