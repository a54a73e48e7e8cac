package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SeedOutcome reports what a single seed call did.
type SeedOutcome string

const (
	SeedCreated SeedOutcome = "created"
	SeedSkipped SeedOutcome = "skipped"
)

// SeedOptions configures a bulk seed run.
type SeedOptions struct {
	// Replace writes every entity unconditionally instead of skipping
	// existing aliases.
	Replace bool

	// DryRun performs the existence checks but suppresses all writes.
	DryRun bool
}

// SeedResult collects per-alias outcomes of a bulk seed run. Per-item
// errors land in Errored instead of aborting the batch.
type SeedResult struct {
	Created []string
	Skipped []string
	Errored []string
}

// SeedEntity inserts e only if no entity with its alias exists yet in its
// OU. The check-then-act is not atomic against concurrent seeding of the
// same alias; seeding is meant for operator-driven bootstrap, not as a
// general uniqueness constraint.
func (s *Store) SeedEntity(ctx context.Context, e Entity) (SeedOutcome, error) {
	return s.seedOne(ctx, e, SeedOptions{})
}

// SeedEntities applies the single-entity seed to each item.
func (s *Store) SeedEntities(ctx context.Context, list []Entity, opts SeedOptions) *SeedResult {
	result := &SeedResult{}
	for _, e := range list {
		name := e.Alias
		if name == "" {
			name = e.Ref()
		}

		outcome, err := s.seedOne(ctx, e, opts)
		if err != nil {
			s.logger.Warn("seed failed",
				zap.String("entity", name),
				zap.Error(err),
			)
			result.Errored = append(result.Errored, name)
			continue
		}
		switch outcome {
		case SeedCreated:
			result.Created = append(result.Created, name)
		case SeedSkipped:
			result.Skipped = append(result.Skipped, name)
		}
	}
	return result
}

func (s *Store) seedOne(ctx context.Context, e Entity, opts SeedOptions) (SeedOutcome, error) {
	if opts.Replace {
		if opts.DryRun {
			return SeedCreated, nil
		}
		_, err := s.Put(ctx, e)
		return SeedCreated, err
	}

	if e.Alias == "" {
		return "", fmt.Errorf("%w: seeding requires an alias", ErrValidation)
	}
	ou := e.OU
	if ou == "" {
		ou = RootOU
	}

	_, err := s.QueryByAlias(ctx, ou, e.Model, e.Alias, QueryOptions{})
	switch {
	case err == nil:
		return SeedSkipped, nil
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	if opts.DryRun {
		return SeedCreated, nil
	}
	if _, err := s.Put(ctx, e); err != nil {
		return "", err
	}
	return SeedCreated, nil
}

// Export dumps an OU's entities for one model in stable sequence order.
// A zero limit exports everything, following cursors until exhausted.
func (s *Store) Export(ctx context.Context, ou, model string, limit int32) ([]Entity, error) {
	opts := QueryOptions{Ascending: true, Limit: limit}

	var items []Entity
	for {
		page, err := s.QueryByOU(ctx, ou, model, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if limit > 0 && int32(len(items)) >= limit {
			return items[:limit], nil
		}
		if page.Cursor == "" {
			return items, nil
		}
		opts.StartKey = page.Cursor
	}
}

// ExportJSON serializes an export as pretty-printed JSON.
func (s *Store) ExportJSON(ctx context.Context, ou, model string, limit int32) ([]byte, error) {
	items, err := s.Export(ctx, ou, model, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Entity{}
	}
	return json.MarshalIndent(items, "", "  ")
}
