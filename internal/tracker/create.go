package tracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/paths"
)

// Generator produces a raw path from user input.
type Generator interface {
	Generate(ctx context.Context, input paths.Input) (*paths.GeneratedPath, error)
}

// Inserter is the store side of path creation.
type Inserter interface {
	PathStore
	Insert(ctx context.Context, p *paths.LearningPath) error
}

// Create generates a path for input, normalizes it, saves it and opens a
// session on it. Generation errors are returned unchanged; a response
// without phases is paths.ErrEmptyPath and one carrying its own error
// message is a *paths.RejectedError. Nothing is saved in either case.
func Create(ctx context.Context, gen Generator, store Inserter, input paths.Input, opts ...Option) (*Session, error) {
	s := newSession(store, opts)

	raw, err := gen.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	p, err := paths.Normalize(raw, input.Clean(), s.now())
	if err != nil {
		s.log.Warn("generated path rejected", zap.Error(err))
		return nil, err
	}
	if err := store.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("learning path created",
		zap.String("path_id", p.ID),
		zap.Int("phases", len(p.Phases)),
	)
	return Resume(ctx, store, p, opts...)
}
