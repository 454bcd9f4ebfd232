// Package dataset loads the transactions table from a source, enriches it
// into domain records and memoizes the result for a bounded time.
package dataset

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/techmart-analytics/internal/domain"
	"github.com/dvloznov/techmart-analytics/internal/source"
)

// RowSet is an immutable snapshot of enriched transactions.
type RowSet struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Stats    ParseStats

	rows []domain.Transaction
}

// NewRowSet builds a snapshot over rows. The slice must not be modified
// afterwards.
func NewRowSet(src string, loadedAt time.Time, rows []domain.Transaction, stats ParseStats) *RowSet {
	return &RowSet{
		ID:       uuid.New(),
		Source:   src,
		LoadedAt: loadedAt,
		Stats:    stats,
		rows:     rows,
	}
}

// Rows returns a copy of the snapshot's transactions.
func (s *RowSet) Rows() []domain.Transaction {
	if s == nil {
		return nil
	}
	return slices.Clone(s.rows)
}

// Len returns the number of transactions.
func (s *RowSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Loader fetches and enriches the transactions table.
type Loader struct {
	src source.Source
	log zerolog.Logger
	now func() time.Time
}

// NewLoader creates a loader reading from src.
func NewLoader(src source.Source, log zerolog.Logger) *Loader {
	return &Loader{
		src: src,
		log: log.With().Str("source", src.Name()).Logger(),
		now: time.Now,
	}
}

// SourceName returns the name of the underlying source.
func (l *Loader) SourceName() string {
	return l.src.Name()
}

// Load fetches the full table and returns an enriched snapshot.
//
// Failures are *LoadError. A source that returns no rows yields an empty
// snapshot together with an EmptyDataset error, so callers can cache the
// empty state and still tell the user.
func (l *Loader) Load(ctx context.Context) (*RowSet, error) {
	start := l.now()
	l.log.Debug().Msg("Loading dataset")

	table, err := l.src.Fetch(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("Failed to fetch dataset")
		return nil, &LoadError{Source: l.src.Name(), Kind: KindSourceUnreachable, Err: err}
	}

	rows, stats, err := Enrich(table)
	if err != nil {
		l.log.Error().Err(err).Msg("Dataset is malformed")
		return nil, &LoadError{Source: l.src.Name(), Kind: KindSourceUnreachable, Err: err}
	}

	rs := NewRowSet(l.src.Name(), l.now(), rows, stats)

	l.log.Info().
		Str("snapshot_id", rs.ID.String()).
		Int("rows", rs.Len()).
		Int("unparsed_timestamps", stats.UnparsedTimestamps).
		Int("unknown_ages", stats.UnknownAges).
		Int("unparsed_amounts", stats.UnparsedAmounts).
		Dur("elapsed", l.now().Sub(start)).
		Msg("Dataset loaded")

	if rs.Len() == 0 {
		l.log.Warn().Msg("Dataset is empty")
		return rs, &LoadError{Source: l.src.Name(), Kind: KindEmptyDataset, Err: ErrNoRows}
	}

	return rs, nil
}
