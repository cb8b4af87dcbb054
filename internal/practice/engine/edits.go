package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/practice/reorder"
)

// edit applies fn to the Draft, then persists. Edits are refused while
// a generation is running since its result would overwrite them.
func (e *Engine) edit(fn func() error) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.InFlight() {
		return Snapshot{}, practice.ErrGenerationInFlight
	}
	if err := fn(); err != nil {
		return Snapshot{}, err
	}
	e.warning = ""
	e.failure = nil
	if len(e.draft.Activities) > 0 {
		e.state = StateResolved
	}
	e.persistLocked()
	return e.snapshotLocked(), nil
}

func (e *Engine) checkIndexLocked(index int) error {
	if index < 0 || index >= len(e.draft.Activities) {
		return fmt.Errorf("%w: %d (draft has %d)", practice.ErrIndexOutOfRange, index, len(e.draft.Activities))
	}
	return nil
}

func (e *Engine) exercise(id string) (practice.Exercise, error) {
	ex, ok := e.deps.Catalog.ByID(id)
	if !ok {
		return practice.Exercise{}, fmt.Errorf("%w: %q", practice.ErrUnknownExercise, id)
	}
	return ex, nil
}

// AddExercise appends a catalog exercise at its default duration.
func (e *Engine) AddExercise(ctx context.Context, exerciseID string) (Snapshot, error) {
	ex, err := e.exercise(exerciseID)
	if err != nil {
		return Snapshot{}, err
	}
	return e.edit(func() error {
		e.draft.Activities = append(e.draft.Activities, ex.ToActivity(newActivityID(e.now())))
		return nil
	})
}

// ReplaceActivity swaps the activity at index for a catalog exercise.
func (e *Engine) ReplaceActivity(ctx context.Context, index int, exerciseID string) (Snapshot, error) {
	ex, err := e.exercise(exerciseID)
	if err != nil {
		return Snapshot{}, err
	}
	return e.edit(func() error {
		if err := e.checkIndexLocked(index); err != nil {
			return err
		}
		e.draft.Activities[index] = ex.ToActivity(newActivityID(e.now()))
		return nil
	})
}

// RemoveActivity drops the activity at index. Removing the last one empties
// the Draft, which clears the cache entry; the next Ensure regenerates.
func (e *Engine) RemoveActivity(ctx context.Context, index int) (Snapshot, error) {
	return e.edit(func() error {
		if err := e.checkIndexLocked(index); err != nil {
			return err
		}
		acts := e.draft.Activities
		e.draft.Activities = append(acts[:index:index], acts[index+1:]...)
		if len(e.draft.Activities) == 0 {
			e.draft.Activities = nil
			e.state = StateIdle
		}
		return nil
	})
}

func (e *Engine) ResizeActivity(ctx context.Context, index, minutes int) (Snapshot, error) {
	if minutes <= 0 || minutes > practice.MaxActivityDuration {
		return Snapshot{}, practice.ErrInvalidDuration
	}
	return e.edit(func() error {
		if err := e.checkIndexLocked(index); err != nil {
			return err
		}
		e.draft.Activities[index].Duration = minutes
		return nil
	})
}

func (e *Engine) Reorder(ctx context.Context, source, target int, edge reorder.Edge) (Snapshot, error) {
	return e.edit(func() error {
		moved, err := reorder.Move(e.draft.Activities, source, target, edge)
		if err != nil {
			return fmt.Errorf("%w: %v", practice.ErrIndexOutOfRange, err)
		}
		e.draft.Activities = moved
		return nil
	})
}

// Commit freezes the Draft into a Session and hands it to the session sink.
// Any generation still running is superseded so its result cannot land in
// the next Draft, and the cache entry is deleted unconditionally.
func (e *Engine) Commit(ctx context.Context) (*practice.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.draft.Activities) == 0 {
		return nil, practice.ErrEmptyDraft
	}

	session := &practice.Session{
		ID:            uuid.NewString(),
		UserID:        e.cfg.UserID,
		Activities:    practice.CloneActivities(e.draft.Activities),
		TotalDuration: e.draft.SessionLength,
		CreatedAt:     e.now().UTC(),
	}
	if e.deps.Sessions != nil {
		if err := e.deps.Sessions.SaveSession(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	e.cancelLocked()
	e.draft.Activities = nil
	e.state = StateIdle
	e.failure = nil
	e.warning = ""
	e.deleteCacheLocked()
	e.log.Info("Session committed", "session_id", session.ID, "activities", len(session.Activities))
	return session, nil
}
