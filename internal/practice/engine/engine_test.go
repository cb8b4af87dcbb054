package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/catalog"
	"github.com/yungbote/practicecoach-backend/internal/practice/draftcache"
	"github.com/yungbote/practicecoach-backend/internal/practice/fallback"
	"github.com/yungbote/practicecoach-backend/internal/practice/reorder"
	"github.com/yungbote/practicecoach-backend/internal/practice/summary"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

type result struct {
	acts []practice.Activity
	err  error
}

type call struct {
	ctx    context.Context
	length int
	reply  chan result
}

// fakeRemote hands every request to the test through calls. With
// ignoreCancel set it keeps waiting for a reply after cancellation, like a
// network call that has already left the process.
type fakeRemote struct {
	calls        chan *call
	ignoreCancel bool
	count        atomic.Int32
}

func newFakeRemote(ignoreCancel bool) *fakeRemote {
	return &fakeRemote{calls: make(chan *call, 8), ignoreCancel: ignoreCancel}
}

func (f *fakeRemote) Generate(ctx context.Context, brief string, length int) ([]practice.Activity, error) {
	f.count.Add(1)
	c := &call{ctx: ctx, length: length, reply: make(chan result, 1)}
	f.calls <- c
	if f.ignoreCancel {
		r := <-c.reply
		return r.acts, r.err
	}
	select {
	case r := <-c.reply:
		return r.acts, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeRemote) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("no generation request arrived")
		return nil
	}
}

type countingFallback struct {
	inner Fallback
	count atomic.Int32
}

func (c *countingFallback) Generate(goals []practice.Goal, rep []practice.RepertoirePiece, length int) ([]practice.Activity, error) {
	c.count.Add(1)
	return c.inner.Generate(goals, rep, length)
}

type staticSnapshots struct{ in summary.Input }

func (s staticSnapshots) Snapshot(context.Context, string) (summary.Input, error) { return s.in, nil }

type memorySessions struct {
	mu       sync.Mutex
	sessions []*practice.Session
	err      error
}

func (m *memorySessions) SaveSession(_ context.Context, s *practice.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions = append(m.sessions, s)
	return nil
}

func remoteActs(tag string, n int) []practice.Activity {
	out := []practice.Activity{{ID: tag + "-w", Kind: practice.KindWarmup, Title: "Warm Up", Duration: 5}}
	for i := 1; i < n; i++ {
		out = append(out, practice.Activity{ID: tag + "-" + string(rune('0'+i)), Kind: practice.KindExercise, Title: tag, Duration: 10})
	}
	return out
}

type harness struct {
	engine   *Engine
	remote   *fakeRemote
	fallback *countingFallback
	cache    draftcache.Store
	sessions *memorySessions
}

type harnessOpts struct {
	userID       string
	remote       *fakeRemote
	noRemote     bool
	cache        draftcache.Store
	input        summary.Input
	catalog      *catalog.Catalog
	genTimeout   time.Duration
	ignoreCancel bool
}

func newHarness(t *testing.T, o harnessOpts) *harness {
	t.Helper()
	if o.userID == "" {
		o.userID = "u1"
	}
	if o.cache == nil {
		o.cache = draftcache.NewMemoryStore(0)
	}
	if o.catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			t.Fatalf("catalog: %v", err)
		}
		o.catalog = cat
	}
	h := &harness{
		cache:    o.cache,
		sessions: &memorySessions{},
		fallback: &countingFallback{inner: fallback.New(o.catalog, fallback.WithRand(rand.New(rand.NewPCG(7, 7))))},
	}
	deps := Deps{
		Fallback:  h.fallback,
		Cache:     o.cache,
		Snapshots: staticSnapshots{in: o.input},
		Sessions:  h.sessions,
		Catalog:   o.catalog,
	}
	if !o.noRemote {
		h.remote = o.remote
		if h.remote == nil {
			h.remote = newFakeRemote(o.ignoreCancel)
		}
		deps.Remote = h.remote
	}
	e, err := New(logger.Nop(), Config{UserID: o.userID, DefaultSessionLength: 60, GenerationTimeout: o.genTimeout}, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	h.engine = e
	return h
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func ids(acts []practice.Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}

func sameIDs(a, b []practice.Activity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func TestRemoteSuccessResolvesAndCaches(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	if !h.engine.Ensure(ctx) {
		t.Fatalf("Ensure did not start a generation")
	}
	if got := h.engine.State(); got != StateRequesting {
		t.Fatalf("state=%s, want requesting", got)
	}
	c := h.remote.next(t)
	if c.length != 60 {
		t.Fatalf("length=%d", c.length)
	}
	want := remoteActs("r", 3)
	c.reply <- result{acts: want}
	waitIdle(t, h.engine)

	snap := h.engine.Snapshot()
	if snap.State != StateResolved || !sameIDs(snap.Activities, want) {
		t.Fatalf("snapshot=%+v", snap)
	}
	cached, _ := h.cache.Load(ctx, "u1")
	if cached == nil || !sameIDs(cached.Activities, want) || cached.SessionLength != 60 {
		t.Fatalf("cache=%+v", cached)
	}
	if h.fallback.count.Load() != 0 {
		t.Fatalf("fallback ran after remote success")
	}
}

func TestEnsureIsReentrant(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()
	if !h.engine.Ensure(ctx) {
		t.Fatalf("first Ensure returned false")
	}
	for i := 0; i < 5; i++ {
		if h.engine.Ensure(ctx) {
			t.Fatalf("Ensure %d started a second generation", i+2)
		}
	}
	c := h.remote.next(t)
	c.reply <- result{acts: remoteActs("r", 2)}
	waitIdle(t, h.engine)
	if n := h.remote.count.Load(); n != 1 {
		t.Fatalf("remote called %d times", n)
	}
	if h.engine.Ensure(ctx) {
		t.Fatalf("Ensure regenerated a populated draft")
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t, harnessOpts{ignoreCancel: true})
	ctx := context.Background()

	h.engine.Ensure(ctx)
	r1 := h.remote.next(t)

	if _, err := h.engine.SetSessionLength(ctx, 30); err != nil {
		t.Fatalf("SetSessionLength: %v", err)
	}
	r2 := h.remote.next(t)
	if r2.length != 30 {
		t.Fatalf("second request length=%d", r2.length)
	}
	if r1.ctx.Err() == nil {
		t.Fatalf("first request context not cancelled")
	}

	want := remoteActs("r2", 3)
	r2.reply <- result{acts: want}
	waitIdle(t, h.engine)

	// R1 resolves after R2 has been applied.
	r1.reply <- result{acts: remoteActs("r1", 4)}
	h.engine.Close()

	snap := h.engine.Snapshot()
	if !sameIDs(snap.Activities, want) {
		t.Fatalf("draft=%v, want R2 %v", ids(snap.Activities), ids(want))
	}
	if snap.SessionLength != 30 {
		t.Fatalf("session length=%d", snap.SessionLength)
	}
	cached, _ := h.cache.Load(ctx, "u1")
	if cached == nil || !sameIDs(cached.Activities, want) {
		t.Fatalf("cache holds %+v, want R2", cached)
	}
}

func TestCancellationSkipsFallback(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	ctx := context.Background()

	h.engine.Ensure(ctx)
	h.remote.next(t)
	if _, err := h.engine.SetSessionLength(ctx, 45); err != nil {
		t.Fatalf("SetSessionLength: %v", err)
	}
	r2 := h.remote.next(t)
	want := remoteActs("r2", 2)
	r2.reply <- result{acts: want}
	waitIdle(t, h.engine)
	h.engine.Close()

	if n := h.fallback.count.Load(); n != 0 {
		t.Fatalf("fallback ran %d times for a cancelled request", n)
	}
	if snap := h.engine.Snapshot(); !sameIDs(snap.Activities, want) {
		t.Fatalf("draft=%v", ids(snap.Activities))
	}
}

func TestFallbackOnRemoteFailure(t *testing.T) {
	in := summary.Input{Goals: []practice.Goal{
		practice.TechniqueGoal{GoalMeta: practice.GoalMeta{ID: "g1"}, Focus: []string{"Scales", "Rhythm"}},
	}}
	h := newHarness(t, harnessOpts{input: in})
	ctx := context.Background()

	h.engine.Ensure(ctx)
	c := h.remote.next(t)
	c.reply <- result{err: practice.NewRemoteGenerationError(500, "", nil)}
	waitIdle(t, h.engine)

	snap := h.engine.Snapshot()
	if snap.State != StateResolved || snap.Error != "" {
		t.Fatalf("snapshot=%+v", snap)
	}
	if len(snap.Activities) < 2 || snap.Activities[0].Kind != practice.KindWarmup || snap.Activities[0].Duration != 5 {
		t.Fatalf("activities=%+v", snap.Activities)
	}
	if h.fallback.count.Load() != 1 {
		t.Fatalf("fallback count=%d", h.fallback.count.Load())
	}
	if cached, _ := h.cache.Load(ctx, "u1"); cached == nil || len(cached.Activities) != len(snap.Activities) {
		t.Fatalf("fallback result not cached")
	}
}

func TestMalformedRemoteResultFallsBack(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.engine.Ensure(context.Background())
	c := h.remote.next(t)
	c.reply <- result{acts: []practice.Activity{{ID: "x", Kind: practice.KindExercise, Title: "x", Duration: 0}}}
	waitIdle(t, h.engine)
	if h.fallback.count.Load() != 1 {
		t.Fatalf("malformed remote result admitted")
	}
}

func TestOversizedRemoteDurationFallsBack(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	h.engine.Ensure(context.Background())
	c := h.remote.next(t)
	acts := remoteActs("huge", 2)
	acts[1].Duration = 10000000
	c.reply <- result{acts: acts}
	waitIdle(t, h.engine)
	if h.fallback.count.Load() != 1 {
		t.Fatalf("oversized remote duration admitted")
	}
	for _, a := range h.engine.Snapshot().Activities {
		if a.Duration == 10000000 {
			t.Fatalf("draft kept remote activity %+v", a)
		}
	}
}

func TestTimeoutFallsBack(t *testing.T) {
	h := newHarness(t, harnessOpts{genTimeout: 20 * time.Millisecond})
	h.engine.Ensure(context.Background())
	h.remote.next(t)
	waitIdle(t, h.engine)
	if h.fallback.count.Load() != 1 || h.engine.State() != StateResolved {
		t.Fatalf("state=%s fallback=%d", h.engine.State(), h.fallback.count.Load())
	}
}

func TestNoRemoteUsesFallback(t *testing.T) {
	h := newHarness(t, harnessOpts{noRemote: true})
	h.engine.Ensure(context.Background())
	waitIdle(t, h.engine)
	snap := h.engine.Snapshot()
	if snap.State != StateResolved || len(snap.Activities) != 5 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestEmptyCatalogFails(t *testing.T) {
	empty, _ := catalog.New(nil)
	h := newHarness(t, harnessOpts{noRemote: true, catalog: empty})
	h.engine.Ensure(context.Background())
	waitIdle(t, h.engine)
	snap := h.engine.Snapshot()
	if snap.State != StateFailed || snap.Error == "" || len(snap.Activities) != 0 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestWarmupOnlyIsVisible(t *testing.T) {
	in := summary.Input{Goals: []practice.Goal{practice.ListeningGoal{GoalMeta: practice.GoalMeta{ID: "g"}}}}
	h := newHarness(t, harnessOpts{noRemote: true, input: in})
	h.engine.Ensure(context.Background())
	waitIdle(t, h.engine)
	snap := h.engine.Snapshot()
	if snap.State != StateResolved || snap.Warning == "" || len(snap.Activities) != 1 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestStartSeedsFromCache(t *testing.T) {
	ctx := context.Background()
	store := draftcache.NewMemoryStore(0)
	seed := remoteActs("cached", 3)
	_ = store.Save(ctx, practice.CachedDraft{UserID: "u1", SessionLength: 45, Activities: seed, Timestamp: time.Now().UnixMilli()})

	h := newHarness(t, harnessOpts{cache: store})
	if err := h.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := h.engine.Snapshot()
	if snap.State != StateResolved || snap.SessionLength != 45 || !sameIDs(snap.Activities, seed) {
		t.Fatalf("snapshot=%+v", snap)
	}
	if h.engine.Ensure(ctx) {
		t.Fatalf("Ensure generated despite cached draft")
	}
	if h.remote.count.Load() != 0 {
		t.Fatalf("remote called")
	}
}

func TestStartIgnoresOtherUsersCache(t *testing.T) {
	ctx := context.Background()
	store := draftcache.NewMemoryStore(0)
	_ = store.Save(ctx, practice.CachedDraft{UserID: "u1", SessionLength: 45, Activities: remoteActs("u1", 2), Timestamp: time.Now().UnixMilli()})

	h := newHarness(t, harnessOpts{userID: "u2", cache: store})
	if err := h.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap := h.engine.Snapshot()
	if snap.State != StateIdle || len(snap.Activities) != 0 || snap.SessionLength != 60 {
		t.Fatalf("u2 picked up u1's draft: %+v", snap)
	}
}

func resolved(t *testing.T, n int) *harness {
	t.Helper()
	ctx := context.Background()
	store := draftcache.NewMemoryStore(0)
	_ = store.Save(ctx, practice.CachedDraft{UserID: "u1", SessionLength: 30, Activities: remoteActs("d", n), Timestamp: time.Now().UnixMilli()})
	h := newHarness(t, harnessOpts{cache: store})
	if err := h.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h
}

func TestEdits(t *testing.T) {
	ctx := context.Background()
	h := resolved(t, 3)
	e := h.engine

	snap, err := e.AddExercise(ctx, "major-scales")
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	added := snap.Activities[3]
	if added.Kind != practice.KindExercise || added.SourceExerciseID != "major-scales" || added.Duration != 10 {
		t.Fatalf("added=%+v", added)
	}
	if _, err := e.AddExercise(ctx, "nope"); !errors.Is(err, practice.ErrUnknownExercise) {
		t.Fatalf("unknown exercise err=%v", err)
	}

	snap, err = e.ReplaceActivity(ctx, 1, "hanon-1")
	if err != nil {
		t.Fatalf("ReplaceActivity: %v", err)
	}
	if snap.Activities[1].SourceExerciseID != "hanon-1" {
		t.Fatalf("replace did not land: %+v", snap.Activities[1])
	}
	if _, err := e.ReplaceActivity(ctx, 9, "hanon-1"); !errors.Is(err, practice.ErrIndexOutOfRange) {
		t.Fatalf("out of range err=%v", err)
	}

	if _, err := e.ResizeActivity(ctx, 0, 0); !errors.Is(err, practice.ErrInvalidDuration) {
		t.Fatalf("resize 0 err=%v", err)
	}
	if _, err := e.ResizeActivity(ctx, 0, 121); !errors.Is(err, practice.ErrInvalidDuration) {
		t.Fatalf("resize 121 err=%v", err)
	}
	snap, err = e.ResizeActivity(ctx, 0, 120)
	if err != nil || snap.Activities[0].Duration != 120 {
		t.Fatalf("resize 120: %v %+v", err, snap.Activities[0])
	}

	before := ids(snap.Activities)
	snap, err = e.Reorder(ctx, 0, 2, reorder.After)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got := ids(snap.Activities); got[2] != before[0] || got[0] != before[1] {
		t.Fatalf("reorder %v -> %v", before, got)
	}

	cached, _ := h.cache.Load(ctx, "u1")
	if cached == nil || !sameIDs(cached.Activities, snap.Activities) {
		t.Fatalf("edits not cached")
	}
}

func TestRemovingLastActivityRegenerates(t *testing.T) {
	ctx := context.Background()
	h := resolved(t, 2)
	e := h.engine
	if _, err := e.RemoveActivity(ctx, 0); err != nil {
		t.Fatalf("RemoveActivity: %v", err)
	}
	snap, err := e.RemoveActivity(ctx, 0)
	if err != nil {
		t.Fatalf("RemoveActivity: %v", err)
	}
	if len(snap.Activities) != 0 || snap.State != StateIdle {
		t.Fatalf("snapshot=%+v", snap)
	}
	if cached, _ := h.cache.Load(ctx, "u1"); cached != nil {
		t.Fatalf("empty draft still cached")
	}
	if !e.Ensure(ctx) {
		t.Fatalf("Ensure did not regenerate an emptied draft")
	}
	c := h.remote.next(t)
	if c.length != 30 {
		t.Fatalf("regeneration used length %d, want 30", c.length)
	}
	c.reply <- result{acts: remoteActs("new", 2)}
	waitIdle(t, e)
}

func TestEditsRejectedWhileGenerating(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessOpts{})
	h.engine.Ensure(ctx)
	c := h.remote.next(t)
	if _, err := h.engine.AddExercise(ctx, "major-scales"); !errors.Is(err, practice.ErrGenerationInFlight) {
		t.Fatalf("err=%v, want ErrGenerationInFlight", err)
	}
	c.reply <- result{acts: remoteActs("r", 2)}
	waitIdle(t, h.engine)
}

func TestSetSessionLengthValidation(t *testing.T) {
	h := resolved(t, 2)
	for _, n := range []int{0, -5, practice.MaxSessionLength + 1} {
		if _, err := h.engine.SetSessionLength(context.Background(), n); !errors.Is(err, practice.ErrInvalidSessionLength) {
			t.Fatalf("length %d err=%v", n, err)
		}
	}
	snap, err := h.engine.SetSessionLength(context.Background(), 30)
	if err != nil || len(snap.Activities) != 2 {
		t.Fatalf("same length should keep the draft: %v %+v", err, snap)
	}
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	h := resolved(t, 3)
	e := h.engine

	s, err := e.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.ID == "" || s.UserID != "u1" || s.TotalDuration != 30 || len(s.Activities) != 3 {
		t.Fatalf("session=%+v", s)
	}
	if len(h.sessions.sessions) != 1 {
		t.Fatalf("session not saved")
	}
	if cached, _ := h.cache.Load(ctx, "u1"); cached != nil {
		t.Fatalf("cache not cleared on commit")
	}
	snap := e.Snapshot()
	if len(snap.Activities) != 0 || snap.State != StateIdle {
		t.Fatalf("draft not cleared: %+v", snap)
	}
	if _, err := e.Commit(ctx); !errors.Is(err, practice.ErrEmptyDraft) {
		t.Fatalf("second commit err=%v", err)
	}
}

func TestCommitKeepsDraftWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	h := resolved(t, 2)
	h.sessions.err = errors.New("db down")
	if _, err := h.engine.Commit(ctx); err == nil {
		t.Fatalf("Commit succeeded with failing sink")
	}
	if snap := h.engine.Snapshot(); len(snap.Activities) != 2 {
		t.Fatalf("draft lost after failed commit")
	}
	if cached, _ := h.cache.Load(ctx, "u1"); cached == nil {
		t.Fatalf("cache cleared after failed commit")
	}
}
