package draftcache

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
)

// Store persists at most one in-progress draft per user. Load returns
// (nil, nil) when nothing usable is stored; entries that belong to another
// user or have outlived the TTL are discarded rather than returned.
type Store interface {
	Load(ctx context.Context, userID string) (*practice.CachedDraft, error)
	Save(ctx context.Context, d practice.CachedDraft) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore keeps one entry per user in process memory. It backs the API
// server when no Redis address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]practice.CachedDraft
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]practice.CachedDraft), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (*practice.CachedDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.entries[userID]
	if !ok {
		return nil, nil
	}
	if d.UserID != userID || d.Expired(m.now(), m.ttl) {
		delete(m.entries, userID)
		return nil, nil
	}
	return copyDraft(&d), nil
}

func (m *MemoryStore) Save(_ context.Context, d practice.CachedDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[d.UserID] = *copyDraft(&d)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}

func copyDraft(d *practice.CachedDraft) *practice.CachedDraft {
	out := *d
	out.Activities = practice.CloneActivities(d.Activities)
	return &out
}
