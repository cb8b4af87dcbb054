package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
	"github.com/yungbote/practicecoach-backend/internal/practice/draftcache"
	"github.com/yungbote/practicecoach-backend/internal/practice/summary"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type State string

const (
	StateIdle               State = "idle"
	StateRequesting         State = "requesting"
	StateFallbackRequesting State = "fallback_requesting"
	StateResolved           State = "resolved"
	StateCancelled          State = "cancelled"
	StateFailed             State = "failed"
)

func (s State) InFlight() bool {
	return s == StateRequesting || s == StateFallbackRequesting
}

// Remote is the generation service as seen by the engine.
type Remote interface {
	Generate(ctx context.Context, brief string, sessionLength int) ([]practice.Activity, error)
}

type Fallback interface {
	Generate(goals []practice.Goal, repertoire []practice.RepertoirePiece, sessionLength int) ([]practice.Activity, error)
}

// SnapshotSource loads the read-only goal, repertoire and skill state the
// brief is built from.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID string) (summary.Input, error)
}

type SessionSink interface {
	SaveSession(ctx context.Context, s *practice.Session) error
}

type Config struct {
	UserID               string
	DefaultSessionLength int
	GenerationTimeout    time.Duration
	CacheTimeout         time.Duration
}

type Deps struct {
	Remote    Remote
	Fallback  Fallback
	Cache     draftcache.Store
	Snapshots SnapshotSource
	Sessions  SessionSink
	Catalog   *catalog.Catalog
}

// Engine owns one user's Draft. Generation results and user edits are
// serialized by mu; epoch identifies the only generation whose result may
// still be applied.
type Engine struct {
	log  *logger.Logger
	cfg  Config
	deps Deps
	now  func() time.Time

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu      sync.Mutex
	draft   practice.Draft
	state   State
	epoch   uint64
	cancel  context.CancelFunc
	done    chan struct{}
	failure error
	warning string
}

// Snapshot is a point-in-time copy of the Draft and engine state.
type Snapshot struct {
	UserID        string              `json:"userId"`
	SessionLength int                 `json:"sessionLength"`
	Activities    []practice.Activity `json:"activities"`
	TotalDuration int                 `json:"totalDuration"`
	State         State               `json:"state"`
	Generating    bool                `json:"generating"`
	Error         string              `json:"error,omitempty"`
	Warning       string              `json:"warning,omitempty"`
}

func New(log *logger.Logger, cfg Config, deps Deps) (*Engine, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.UserID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if deps.Fallback == nil {
		return nil, fmt.Errorf("fallback generator required")
	}
	if deps.Cache == nil {
		deps.Cache = draftcache.NewMemoryStore(0)
	}
	if cfg.DefaultSessionLength <= 0 || cfg.DefaultSessionLength > practice.MaxSessionLength {
		cfg.DefaultSessionLength = practice.DefaultSessionLength
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 60 * time.Second
	}
	if cfg.CacheTimeout <= 0 {
		cfg.CacheTimeout = 3 * time.Second
	}
	base, stop := context.WithCancel(context.Background())
	return &Engine{
		log:   log.With("service", "PracticeEngine", "user_id", cfg.UserID),
		cfg:   cfg,
		deps:  deps,
		now:   time.Now,
		base:  base,
		stop:  stop,
		state: StateIdle,
		draft: practice.Draft{UserID: cfg.UserID, SessionLength: cfg.DefaultSessionLength},
	}, nil
}

// Start seeds the Draft from the cache. A usable cached draft puts the
// engine straight into StateResolved and no generation runs.
func (e *Engine) Start(ctx context.Context) error {
	cached, err := e.deps.Cache.Load(ctx, e.cfg.UserID)
	if err != nil {
		e.log.Warn("Draft cache load failed, starting empty", "error", err)
		return nil
	}
	if cached == nil {
		return nil
	}
	if verr := practice.ValidateActivities(cached.Activities); verr != nil {
		e.log.Warn("Ignoring invalid cached draft", "error", verr)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle || len(e.draft.Activities) > 0 {
		return nil
	}
	e.draft.Activities = practice.CloneActivities(cached.Activities)
	if cached.SessionLength > 0 && cached.SessionLength <= practice.MaxSessionLength {
		e.draft.SessionLength = cached.SessionLength
	}
	e.state = StateResolved
	e.log.Debug("Draft restored from cache", "activities", len(cached.Activities), "saved_at", cached.SavedAt())
	return nil
}

// Ensure starts a generation when the Draft is empty and none is running.
// It reports whether a new generation was started; repeated calls while one
// is active are no-ops.
func (e *Engine) Ensure(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureLocked()
}

func (e *Engine) ensureLocked() bool {
	if e.base.Err() != nil || e.state.InFlight() || len(e.draft.Activities) > 0 {
		return false
	}
	e.epoch++
	ctx, cancel := context.WithCancel(e.base)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.state = StateRequesting
	e.failure = nil
	e.warning = ""
	e.wg.Add(1)
	go e.run(ctx, e.epoch, e.draft.SessionLength, done)
	return true
}

// Wait blocks until no generation is in flight or ctx ends.
func (e *Engine) Wait(ctx context.Context) error {
	for {
		e.mu.Lock()
		inFlight, done := e.state.InFlight(), e.done
		e.mu.Unlock()
		if !inFlight || done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	acts := practice.CloneActivities(e.draft.Activities)
	if acts == nil {
		acts = []practice.Activity{}
	}
	s := Snapshot{
		UserID:        e.draft.UserID,
		SessionLength: e.draft.SessionLength,
		Activities:    acts,
		TotalDuration: practice.TotalDuration(acts),
		State:         e.state,
		Generating:    e.state.InFlight(),
		Warning:       e.warning,
	}
	if e.failure != nil {
		s.Error = e.failure.Error()
	}
	return s
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetSessionLength invalidates the Draft: any running generation is
// cancelled and its eventual result dropped, the old draft is removed from
// the cache, and a fresh generation starts.
func (e *Engine) SetSessionLength(ctx context.Context, minutes int) (Snapshot, error) {
	if minutes <= 0 || minutes > practice.MaxSessionLength {
		return Snapshot{}, practice.ErrInvalidSessionLength
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if minutes == e.draft.SessionLength && (len(e.draft.Activities) > 0 || e.state.InFlight()) {
		return e.snapshotLocked(), nil
	}

	e.cancelLocked()
	e.draft.SessionLength = minutes
	e.draft.Activities = nil
	e.state = StateIdle
	e.failure = nil
	e.warning = ""
	e.deleteCacheLocked()
	e.ensureLocked()
	return e.snapshotLocked(), nil
}

// Close cancels any running generation and waits for every generation
// goroutine, superseded ones included, to return.
func (e *Engine) Close() {
	e.mu.Lock()
	e.cancelLocked()
	e.mu.Unlock()
	e.stop()
	e.wg.Wait()
}

// cancelLocked supersedes the current generation. Bumping the epoch is what
// guarantees a late result is dropped; the context cancel only saves work.
func (e *Engine) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.state.InFlight() {
		e.state = StateCancelled
	}
	e.epoch++
}

func (e *Engine) persistLocked() {
	if len(e.draft.Activities) == 0 {
		e.deleteCacheLocked()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CacheTimeout)
	defer cancel()
	err := e.deps.Cache.Save(ctx, practice.CachedDraft{
		Activities:    practice.CloneActivities(e.draft.Activities),
		SessionLength: e.draft.SessionLength,
		Timestamp:     e.now().UnixMilli(),
		UserID:        e.cfg.UserID,
	})
	if err != nil {
		e.log.Warn("Draft cache save failed", "error", err)
	}
}

func (e *Engine) deleteCacheLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CacheTimeout)
	defer cancel()
	if err := e.deps.Cache.Delete(ctx, e.cfg.UserID); err != nil {
		e.log.Warn("Draft cache delete failed", "error", err)
	}
}

func newActivityID(now time.Time) string {
	return fmt.Sprintf("activity-%d-exercise-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func isCancellation(err error) bool {
	return errors.Is(err, practice.ErrCancelled) || errors.Is(err, context.Canceled)
}
