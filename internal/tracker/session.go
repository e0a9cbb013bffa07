// Package tracker owns the currently displayed learning path and every
// mutation applied to it.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/paths"
)

// PathStore is the persistence the session writes through to.
type PathStore interface {
	GetByID(ctx context.Context, id string) (*paths.LearningPath, bool)
	// Mutate applies fn to the stored path atomically and returns the saved
	// copy, or (nil, nil) when id is unknown.
	Mutate(ctx context.Context, id string, fn func(*paths.LearningPath) error) (*paths.LearningPath, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always approves every confirmation. Used where the caller has already
// asked, e.g. an explicit ?confirm=true.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// Session holds one open path. Each mutation is applied to the stored copy
// atomically, bumps UpdatedAt and refreshes the open path.
type Session struct {
	store PathStore
	log   *zap.Logger
	now   func() time.Time

	mu   sync.Mutex
	path *paths.LearningPath
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

func newSession(store PathStore, opts []Option) *Session {
	s := &Session{store: store, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open loads the path with id from the store.
func Open(ctx context.Context, store PathStore, id string, opts ...Option) (*Session, error) {
	p, ok := store.GetByID(ctx, id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	s := newSession(store, opts)
	s.path = p
	return s, nil
}

// Resume opens the stored copy of handoff's id, falling back to handoff
// itself when the store does not have it.
func Resume(ctx context.Context, store PathStore, handoff *paths.LearningPath, opts ...Option) (*Session, error) {
	if handoff == nil {
		return nil, ErrNoPath
	}
	s := newSession(store, opts)
	if p, ok := store.GetByID(ctx, handoff.ID); ok {
		s.path = p
	} else {
		s.path = handoff.Clone()
	}
	return s, nil
}

// Path returns a copy of the open path.
func (s *Session) Path() *paths.LearningPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path.Clone()
}

// Progress is the rounded completion percentage of the open path.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == nil {
		return 0
	}
	return s.path.Progress()
}

// ToggleStep sets the completion of the step at the given positions.
func (s *Session) ToggleStep(ctx context.Context, phaseIndex, stepIndex int, completed bool) error {
	return s.mutate(ctx, func(p *paths.LearningPath) error {
		if phaseIndex < 0 || phaseIndex >= len(p.Phases) {
			return fmt.Errorf("%w: phase %d", ErrStepOutOfRange, phaseIndex)
		}
		steps := p.Phases[phaseIndex].Steps
		if stepIndex < 0 || stepIndex >= len(steps) {
			return fmt.Errorf("%w: phase %d step %d", ErrStepOutOfRange, phaseIndex, stepIndex)
		}
		steps[stepIndex].Completed = completed
		return nil
	})
}

// ToggleStepByID sets the completion of the step identified by
// (phaseTitle, stepID). An empty phaseTitle searches every phase.
func (s *Session) ToggleStepByID(ctx context.Context, phaseTitle, stepID string, completed bool) error {
	return s.mutate(ctx, func(p *paths.LearningPath) error {
		for pi := range p.Phases {
			if phaseTitle != "" && p.Phases[pi].PhaseTitle != phaseTitle {
				continue
			}
			for si := range p.Phases[pi].Steps {
				if p.Phases[pi].Steps[si].ID == stepID {
					p.Phases[pi].Steps[si].Completed = completed
					return nil
				}
			}
		}
		return fmt.Errorf("%w: %q", ErrStepNotFound, stepID)
	})
}

// AddJournalEntry appends an entry. A blank date or title, or a date that
// is not YYYY-MM-DD, is a *ValidationError and leaves the journal unchanged.
func (s *Session) AddJournalEntry(ctx context.Context, date, title, notes string) (*paths.JournalEntry, error) {
	date, title, notes = strings.TrimSpace(date), strings.TrimSpace(title), strings.TrimSpace(notes)
	if err := validateJournal(date, title); err != nil {
		return nil, err
	}

	var entry paths.JournalEntry
	err := s.mutate(ctx, func(p *paths.LearningPath) error {
		entry = paths.JournalEntry{
			ID:    paths.NewJournalID(s.now()),
			Date:  date,
			Title: title,
			Notes: notes,
		}
		p.JournalEntries = append(p.JournalEntries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteJournalEntry removes the entry with id once confirm approves.
func (s *Session) DeleteJournalEntry(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm("Are you sure you want to delete this journal entry?") {
		return ErrNotConfirmed
	}
	return s.mutate(ctx, func(p *paths.LearningPath) error {
		kept := make([]paths.JournalEntry, 0, len(p.JournalEntries))
		for _, e := range p.JournalEntries {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		p.JournalEntries = kept
		return nil
	})
}

// DeletePath removes the open path from the store once confirm approves.
// The session has no path afterwards.
func (s *Session) DeletePath(ctx context.Context, confirm Confirmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == nil {
		return ErrNoPath
	}
	prompt := fmt.Sprintf("Are you sure you want to delete the learning path %q? This cannot be undone.", s.path.PathTitle)
	if confirm == nil || !confirm.Confirm(prompt) {
		return ErrNotConfirmed
	}
	if err := s.store.Delete(ctx, s.path.ID); err != nil {
		return err
	}
	s.log.Info("learning path deleted", zap.String("path_id", s.path.ID))
	s.path = nil
	return nil
}

// mutate applies fn to the stored path inside the store's lock, bumps
// UpdatedAt and refreshes the open path from the result, so changes made
// through other sessions are kept. A path the store does not know is
// mutated in memory only. On error the open path is unchanged.
func (s *Session) mutate(ctx context.Context, fn func(*paths.LearningPath) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == nil {
		return ErrNoPath
	}
	var fnErr error
	apply := func(p *paths.LearningPath) error {
		if fnErr = fn(p); fnErr != nil {
			return fnErr
		}
		p.Touch(s.now())
		return nil
	}

	saved, err := s.store.Mutate(ctx, s.path.ID, apply)
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		s.log.Error("persist learning path failed", zap.String("path_id", s.path.ID), zap.Error(err))
		return fmt.Errorf("save learning path: %w", err)
	}
	if saved == nil {
		next := s.path.Clone()
		if err := apply(next); err != nil {
			return err
		}
		saved = next
	}
	s.path = saved
	return nil
}

func validateJournal(date, title string) error {
	if date == "" || title == "" {
		return &ValidationError{Message: JournalRequiredMessage}
	}
	err := validation.Validate(date, validation.Date("2006-01-02"))
	if err != nil {
		return &ValidationError{Message: "Please provide the date as YYYY-MM-DD.", Err: err}
	}
	return nil
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
