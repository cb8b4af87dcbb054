package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/practicecoach-backend/internal/data/repos"
	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/apierr"
	"github.com/yungbote/practicecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/practicecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
	"github.com/yungbote/practicecoach-backend/internal/practice/draftcache"
	"github.com/yungbote/practicecoach-backend/internal/practice/engine"
	"github.com/yungbote/practicecoach-backend/internal/practice/reorder"
	"github.com/yungbote/practicecoach-backend/internal/practice/summary"
)

var errUnauthenticated = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing user identity"))

type PracticeService interface {
	Draft(ctx context.Context, wait bool) (engine.Snapshot, error)
	SetSessionLength(ctx context.Context, minutes int) (engine.Snapshot, error)
	AddExercise(ctx context.Context, exerciseID string) (engine.Snapshot, error)
	ReplaceActivity(ctx context.Context, index int, exerciseID string) (engine.Snapshot, error)
	ResizeActivity(ctx context.Context, index, minutes int) (engine.Snapshot, error)
	RemoveActivity(ctx context.Context, index int) (engine.Snapshot, error)
	Reorder(ctx context.Context, source, target int, edge string) (engine.Snapshot, error)
	Commit(ctx context.Context) (*types.Session, error)
	RecentSessions(ctx context.Context, limit int) ([]*types.Session, error)
	SkillSummary(ctx context.Context) (string, error)
	UpdatePreferences(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error)
	Exercises(category string) ([]types.Exercise, error)
	ExerciseCategories() []types.ExerciseCategory
	Close()
}

type PracticeConfig struct {
	DefaultSessionLength int
	GenerationTimeout    time.Duration
	// EngineIdleTTL is how long an untouched engine stays resident. Evicted
	// users are re-seeded from the draft cache on their next request.
	EngineIdleTTL time.Duration
	MaxEngines    int
}

type PracticeDeps struct {
	Repos    repos.Repos
	Remote   engine.Remote
	Fallback engine.Fallback
	Cache    draftcache.Store
	Catalog  *catalog.Catalog
}

type engineEntry struct {
	engine   *engine.Engine
	lastUsed time.Time
}

type practiceService struct {
	log  *logger.Logger
	cfg  PracticeConfig
	deps PracticeDeps
	now  func() time.Time

	mu      sync.Mutex
	engines map[string]*engineEntry
	closed  bool
}

func NewPracticeService(log *logger.Logger, cfg PracticeConfig, deps PracticeDeps) PracticeService {
	if cfg.DefaultSessionLength <= 0 || cfg.DefaultSessionLength > types.MaxSessionLength {
		cfg.DefaultSessionLength = types.DefaultSessionLength
	}
	if cfg.EngineIdleTTL <= 0 {
		cfg.EngineIdleTTL = 30 * time.Minute
	}
	if cfg.MaxEngines <= 0 {
		cfg.MaxEngines = 10000
	}
	if deps.Cache == nil {
		deps.Cache = draftcache.NewMemoryStore(0)
	}
	return &practiceService{
		log:     log.With("service", "PracticeService"),
		cfg:     cfg,
		deps:    deps,
		now:     time.Now,
		engines: map[string]*engineEntry{},
	}
}

var errShuttingDown = apierr.New(http.StatusServiceUnavailable, "shutting_down", errors.New("practice service is shutting down"))

// engineFor returns the caller's engine, creating and seeding it from the
// draft cache on first use. The registry lock is never held across the
// preference lookup or the cache load; when two requests race to create the
// same engine the loser is closed.
func (s *practiceService) engineFor(ctx context.Context) (*engine.Engine, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, errUnauthenticated
	}

	if e, err := s.lookup(userID); e != nil || err != nil {
		return e, err
	}

	e, err := s.newEngine(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		e.Close()
		return nil, errShuttingDown
	}
	if cur, ok := s.engines[userID]; ok {
		cur.lastUsed = s.now()
		s.mu.Unlock()
		e.Close()
		return cur.engine, nil
	}
	s.engines[userID] = &engineEntry{engine: e, lastUsed: s.now()}
	evicted := s.evictLocked(userID)
	s.mu.Unlock()

	closeEngines(evicted)
	return e, nil
}

func (s *practiceService) lookup(userID string) (*engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errShuttingDown
	}
	if cur, ok := s.engines[userID]; ok {
		cur.lastUsed = s.now()
		return cur.engine, nil
	}
	return nil, nil
}

func (s *practiceService) newEngine(ctx context.Context, userID string) (*engine.Engine, error) {
	length := s.cfg.DefaultSessionLength
	prefs, err := s.deps.Repos.Preferences.Get(dbctx.New(ctx), userID)
	if err != nil {
		s.log.Warn("Preference lookup failed, using default session length", "user_id", userID, "error", err)
	} else if prefs != nil && prefs.DefaultSessionLength > 0 {
		length = prefs.DefaultSessionLength
	}

	e, err := engine.New(s.log, engine.Config{
		UserID:               userID,
		DefaultSessionLength: length,
		GenerationTimeout:    s.cfg.GenerationTimeout,
	}, engine.Deps{
		Remote:    s.deps.Remote,
		Fallback:  s.deps.Fallback,
		Cache:     s.deps.Cache,
		Snapshots: snapshotSource{repos: s.deps.Repos},
		Sessions:  sessionSink{repo: s.deps.Repos.Sessions},
		Catalog:   s.deps.Catalog,
	})
	if err != nil {
		return nil, fmt.Errorf("create practice engine: %w", err)
	}
	if err := e.Start(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// evictLocked removes engines idle longer than EngineIdleTTL, then the least
// recently used ones while the registry is over MaxEngines. Engines with a
// generation in flight are kept. keep is never evicted.
func (s *practiceService) evictLocked(keep string) []*engine.Engine {
	now := s.now()
	var out []*engine.Engine
	for id, ent := range s.engines {
		if id == keep || ent.engine.State().InFlight() {
			continue
		}
		if now.Sub(ent.lastUsed) > s.cfg.EngineIdleTTL {
			out = append(out, ent.engine)
			delete(s.engines, id)
		}
	}
	for len(s.engines) > s.cfg.MaxEngines {
		oldestID := ""
		var oldest time.Time
		for id, ent := range s.engines {
			if id == keep || ent.engine.State().InFlight() {
				continue
			}
			if oldestID == "" || ent.lastUsed.Before(oldest) {
				oldestID, oldest = id, ent.lastUsed
			}
		}
		if oldestID == "" {
			break
		}
		out = append(out, s.engines[oldestID].engine)
		delete(s.engines, oldestID)
	}
	if len(out) > 0 {
		s.log.Debug("Evicted idle practice engines", "count", len(out), "resident", len(s.engines))
	}
	return out
}

func closeEngines(engines []*engine.Engine) {
	for _, e := range engines {
		e.Close()
	}
}

// Draft returns the current Draft, starting a generation when it is empty.
// With wait set it blocks until that generation settles or ctx ends.
func (s *practiceService) Draft(ctx context.Context, wait bool) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	e.Ensure(ctx)
	if wait {
		if err := e.Wait(ctx); err != nil {
			return engine.Snapshot{}, err
		}
	}
	return e.Snapshot(), nil
}

func (s *practiceService) SetSessionLength(ctx context.Context, minutes int) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.SetSessionLength(ctx, minutes)
}

func (s *practiceService) AddExercise(ctx context.Context, exerciseID string) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.AddExercise(ctx, exerciseID)
}

func (s *practiceService) ReplaceActivity(ctx context.Context, index int, exerciseID string) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.ReplaceActivity(ctx, index, exerciseID)
}

func (s *practiceService) ResizeActivity(ctx context.Context, index, minutes int) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.ResizeActivity(ctx, index, minutes)
}

func (s *practiceService) RemoveActivity(ctx context.Context, index int) (engine.Snapshot, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.RemoveActivity(ctx, index)
}

func (s *practiceService) Reorder(ctx context.Context, source, target int, edge string) (engine.Snapshot, error) {
	parsed, err := reorder.ParseEdge(edge)
	if err != nil {
		return engine.Snapshot{}, apierr.New(http.StatusBadRequest, "invalid_edge", err)
	}
	e, err := s.engineFor(ctx)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return e.Reorder(ctx, source, target, parsed)
}

func (s *practiceService) Commit(ctx context.Context) (*types.Session, error) {
	e, err := s.engineFor(ctx)
	if err != nil {
		return nil, err
	}
	return e.Commit(ctx)
}

func (s *practiceService) RecentSessions(ctx context.Context, limit int) ([]*types.Session, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, errUnauthenticated
	}
	return s.deps.Repos.Sessions.ListRecent(dbctx.New(ctx), userID, limit)
}

// SkillSummary renders the same text the generation brief is built from.
func (s *practiceService) SkillSummary(ctx context.Context) (string, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return "", errUnauthenticated
	}
	in, err := snapshotSource{repos: s.deps.Repos}.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	return summary.Brief(in, s.now()), nil
}

func (s *practiceService) UpdatePreferences(ctx context.Context, prefs types.UserPreferences) (*types.UserPreferences, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, errUnauthenticated
	}
	if prefs.DefaultSessionLength <= 0 || prefs.DefaultSessionLength > types.MaxSessionLength {
		return nil, types.ErrInvalidSessionLength
	}
	if err := s.deps.Repos.Preferences.Upsert(dbctx.New(ctx), userID, prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *practiceService) Exercises(category string) ([]types.Exercise, error) {
	if category == "" {
		return s.deps.Catalog.All(), nil
	}
	cat := types.ExerciseCategory(category)
	if !cat.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_category", fmt.Errorf("unknown category %q", category))
	}
	return s.deps.Catalog.ByCategory(cat), nil
}

// ExerciseCategories lists the catalog's non-empty categories in display order.
func (s *practiceService) ExerciseCategories() []types.ExerciseCategory {
	cats := s.deps.Catalog.Categories()
	if cats == nil {
		cats = []types.ExerciseCategory{}
	}
	return cats
}

// Close stops every engine and waits for their generations to return.
func (s *practiceService) Close() {
	s.mu.Lock()
	s.closed = true
	engines := make([]*engine.Engine, 0, len(s.engines))
	for _, ent := range s.engines {
		engines = append(engines, ent.engine)
	}
	s.engines = map[string]*engineEntry{}
	s.mu.Unlock()

	closeEngines(engines)
}

// snapshotSource loads everything the skill summary needs in parallel.
type snapshotSource struct {
	repos repos.Repos
}

func (src snapshotSource) Snapshot(ctx context.Context, userID string) (summary.Input, error) {
	var in summary.Input
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.New(gctx)

	g.Go(func() error {
		goals, err := src.repos.Goals.ListByUser(dbc, userID)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		in.Goals = goals
		return nil
	})
	g.Go(func() error {
		pg, err := src.repos.PracticeGoals.GetActive(dbc, userID)
		if err != nil {
			return fmt.Errorf("load practice goal: %w", err)
		}
		in.PracticeGoal = pg
		return nil
	})
	g.Go(func() error {
		pieces, err := src.repos.Repertoire.ListByUser(dbc, userID)
		if err != nil {
			return fmt.Errorf("load repertoire: %w", err)
		}
		in.Repertoire = pieces
		return nil
	})
	g.Go(func() error {
		skills, err := src.repos.Skills.ListScaleSkills(dbc, userID)
		if err != nil {
			return fmt.Errorf("load scale skills: %w", err)
		}
		in.ScaleSkills = skills
		return nil
	})
	g.Go(func() error {
		ear, err := src.repos.Skills.GetEarTraining(dbc, userID)
		if err != nil {
			return fmt.Errorf("load ear training: %w", err)
		}
		in.EarTraining = ear
		return nil
	})

	if err := g.Wait(); err != nil {
		return summary.Input{}, err
	}
	return in, nil
}

type sessionSink struct {
	repo repos.SessionRepo
}

func (s sessionSink) SaveSession(ctx context.Context, session *types.Session) error {
	return s.repo.Create(dbctx.New(ctx), session)
}
