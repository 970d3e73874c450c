package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process. It applies the same write rules as PostgresStore,
// including the studio foreign key, and is used by --dry-run and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	opts    Options
	studios map[string]models.Studio
	classes map[string]models.FitnessClass
	logs    []models.ScrapeLog
	nextID  int64
}

// NewMemoryStore returns an empty store seeded with studios.
func NewMemoryStore(opts Options, studios ...models.Studio) *MemoryStore {
	m := &MemoryStore{
		opts:    opts.withDefaults(),
		studios: make(map[string]models.Studio),
		classes: make(map[string]models.FitnessClass),
	}
	for _, st := range studios {
		m.studios[st.ID] = st
	}
	return m
}

// WriteScrapeResult prunes, inserts and logs. Nothing changes if any class is rejected.
func (m *MemoryStore) WriteScrapeResult(ctx context.Context, result models.ScrapeResult) error {
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s is %s", ErrNotSuccessful, result.Brand, result.Status)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range result.Classes {
		if _, ok := m.studios[c.StudioID]; !ok {
			return fmt.Errorf("failed to insert class %s: unknown studio %q", c.ID, c.StudioID)
		}
	}

	cutoff := m.opts.cutoff()
	for id, c := range m.classes {
		if c.StartTime.Before(cutoff) && m.studios[c.StudioID].Brand == result.Brand {
			delete(m.classes, id)
		}
	}

	for _, c := range result.Classes {
		if _, exists := m.classes[c.ID]; exists && m.opts.InsertPolicy != config.InsertUpsert {
			continue
		}
		m.classes[c.ID] = c
	}

	m.appendLocked(models.NewScrapeLog(result, m.opts.Now()))
	return nil
}

// AppendScrapeLog records a standalone log row.
func (m *MemoryStore) AppendScrapeLog(ctx context.Context, entry models.ScrapeLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = m.opts.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(entry)
	return nil
}

func (m *MemoryStore) appendLocked(entry models.ScrapeLog) {
	m.nextID++
	entry.ID = m.nextID
	m.logs = append(m.logs, entry)
}

// UpsertStudios creates or replaces studio rows.
func (m *MemoryStore) UpsertStudios(_ context.Context, studios []models.Studio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range studios {
		m.studios[st.ID] = st
	}
	return nil
}

// BrandStats counts the stored classes of one brand.
func (m *MemoryStore) BrandStats(_ context.Context, brand string) (BrandStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := BrandStats{Brand: brand}
	for _, st := range m.studios {
		if st.Brand == brand {
			stats.Studios++
		}
	}

	now := m.opts.Now()
	for _, c := range m.classes {
		if m.studios[c.StudioID].Brand != brand {
			continue
		}
		stats.Classes++
		if !c.StartTime.Before(now) {
			stats.Upcoming++
		}
		start := c.StartTime
		if stats.First == nil || start.Before(*stats.First) {
			stats.First = &start
		}
		if stats.Last == nil || start.After(*stats.Last) {
			stats.Last = &start
		}
	}
	return stats, nil
}

// RecentScrapeLogs returns the newest rows first.
func (m *MemoryStore) RecentScrapeLogs(_ context.Context, brand string, limit int) ([]models.ScrapeLog, error) {
	if limit <= 0 {
		limit = 50
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.ScrapeLog{}
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if brand == "" || m.logs[i].Brand == brand {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// Classes returns a snapshot ordered by start time, then id.
func (m *MemoryStore) Classes() []models.FitnessClass {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.FitnessClass, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
