package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL bounds how long a snapshot is served before a reload.
const DefaultTTL = 10 * time.Minute

// RowSetLoader produces fresh snapshots. *Loader implements it.
type RowSetLoader interface {
	Load(ctx context.Context) (*RowSet, error)
	SourceName() string
}

// Cache memoizes the latest snapshot for a bounded time.
type Cache struct {
	loader RowSetLoader
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger

	// reload serializes loads; mu guards the fields below.
	reload sync.Mutex
	mu     sync.RWMutex

	snap        *RowSet
	fetchedAt   time.Time
	invalidated bool
	lastErr     error
	lastAttempt time.Time
}

// NewCache creates a cache around loader. A non-positive ttl uses DefaultTTL.
func NewCache(loader RowSetLoader, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		loader: loader,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) current() (*RowSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fresh := c.snap != nil && !c.invalidated && c.now().Sub(c.fetchedAt) < c.ttl
	return c.snap, fresh
}

// Get returns the current snapshot, reloading when it is absent, expired or
// invalidated.
//
// When a reload fails the previous snapshot stays in place and is returned
// together with the error; it may be nil if no load ever succeeded. An empty
// source replaces the snapshot with an empty one and returns an
// EmptyDataset error.
func (c *Cache) Get(ctx context.Context) (*RowSet, error) {
	if snap, fresh := c.current(); fresh {
		return snap, nil
	}

	c.reload.Lock()
	defer c.reload.Unlock()

	// Another caller may have reloaded while we waited.
	if snap, fresh := c.current(); fresh {
		return snap, nil
	}

	rs, err := c.loader.Load(ctx)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastAttempt = now
	c.lastErr = err

	if rs == nil {
		c.log.Warn().Err(err).
			Bool("has_previous", c.snap != nil).
			Msg("Dataset reload failed, keeping previous snapshot")
		return c.snap, err
	}

	c.snap = rs
	c.fetchedAt = now
	c.invalidated = false

	c.log.Info().
		Str("snapshot_id", rs.ID.String()).
		Int("rows", rs.Len()).
		Msg("Dataset cache refreshed")

	return rs, err
}

// Invalidate marks the current snapshot stale; the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = true
}

// Refresh invalidates and reloads.
func (c *Cache) Refresh(ctx context.Context) (*RowSet, error) {
	c.Invalidate()
	return c.Get(ctx)
}

// Status describes the cached snapshot.
type Status struct {
	Source      string     `json:"source"`
	SnapshotID  string     `json:"snapshot_id,omitempty"`
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
	AgeSeconds  float64    `json:"age_seconds"`
	TTLSeconds  float64    `json:"ttl_seconds"`
	Rows        int        `json:"rows"`
	Stale       bool       `json:"stale"`
	Stats       ParseStats `json:"stats"`
	LastError   string     `json:"last_error,omitempty"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
}

// Status reports the snapshot without triggering a load.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		Source:     c.loader.SourceName(),
		TTLSeconds: c.ttl.Seconds(),
		Stale:      true,
	}
	if c.snap != nil {
		loadedAt := c.fetchedAt
		age := c.now().Sub(c.fetchedAt)
		st.SnapshotID = c.snap.ID.String()
		st.LoadedAt = &loadedAt
		st.AgeSeconds = age.Seconds()
		st.Rows = c.snap.Len()
		st.Stats = c.snap.Stats
		st.Stale = c.invalidated || age >= c.ttl || (c.lastErr != nil && !IsEmptyDataset(c.lastErr))
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	if !c.lastAttempt.IsZero() {
		at := c.lastAttempt
		st.LastAttempt = &at
	}
	return st
}
