package engine

import (
	"context"
	"errors"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/summary"
)

const warmupOnlyWarning = "Only the warm-up could be planned; add exercises to fill the session."

// run is one generation attempt. Every write back into the engine is
// conditional on epoch still being current.
func (e *Engine) run(ctx context.Context, epoch uint64, length int, done chan struct{}) {
	defer e.wg.Done()
	defer close(done)

	var in summary.Input
	if e.deps.Snapshots != nil {
		snap, err := e.deps.Snapshots.Snapshot(ctx, e.cfg.UserID)
		switch {
		case err == nil:
			in = snap
		case isCancellation(err) || ctx.Err() != nil:
			e.markCancelled(epoch)
			return
		default:
			e.log.Warn("Snapshot load failed, generating without it", "error", err)
		}
	}

	if e.deps.Remote != nil {
		brief := summary.Brief(in, e.now())
		rctx, rcancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
		acts, err := e.deps.Remote.Generate(rctx, brief, length)
		rcancel()
		if err == nil {
			err = practice.ValidateGenerated(acts)
		}
		if err == nil {
			e.apply(epoch, acts, "")
			return
		}
		if isCancellation(err) && ctx.Err() != nil {
			e.markCancelled(epoch)
			return
		}
		e.log.Warn("Remote generation failed, using fallback", "error", err, "session_length", length)
	}

	if !e.transition(epoch, StateFallbackRequesting) {
		return
	}
	acts, err := e.deps.Fallback.Generate(in.Goals, in.Repertoire, length)
	switch {
	case err == nil:
		e.apply(epoch, acts, "")
	case errors.Is(err, practice.ErrNothingToScale) && len(acts) > 0:
		e.log.Warn("Fallback produced only the warm-up", "session_length", length)
		e.apply(epoch, acts, warmupOnlyWarning)
	default:
		e.fail(epoch, err)
	}
}

func (e *Engine) transition(epoch uint64, to State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return false
	}
	e.state = to
	return true
}

func (e *Engine) apply(epoch uint64, acts []practice.Activity, warning string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		e.log.Debug("Dropping superseded generation result", "epoch", epoch, "current", e.epoch)
		return
	}
	e.draft.Activities = practice.CloneActivities(acts)
	e.state = StateResolved
	e.warning = warning
	e.cancel = nil
	e.persistLocked()
}

func (e *Engine) markCancelled(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return
	}
	e.state = StateCancelled
	e.cancel = nil
}

func (e *Engine) fail(epoch uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return
	}
	e.log.Error("Session generation failed", "error", err)
	e.state = StateFailed
	e.failure = err
	e.cancel = nil
}
