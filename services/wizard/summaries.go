package wizard

import (
	"sync"
	"time"

	"regwizard/models"
)

type summaryEntry struct {
	summary models.Summary
	expires time.Time
}

// SummaryStore hands submitted snapshots to the summary page. Entries live in
// memory only and expire after ttl.
type SummaryStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]summaryEntry
}

func NewSummaryStore(ttl time.Duration, now func() time.Time) *SummaryStore {
	if now == nil {
		now = time.Now
	}
	return &SummaryStore{ttl: ttl, now: now, items: make(map[string]summaryEntry)}
}

func (s *SummaryStore) Put(ref string, summary models.Summary) {
	s.mu.Lock()
	s.items[ref] = summaryEntry{summary: summary, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

// Get returns the snapshot for ref unless it is unknown or expired.
func (s *SummaryStore) Get(ref string) (models.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[ref]
	if !ok {
		return models.Summary{}, false
	}
	if !s.now().Before(e.expires) {
		delete(s.items, ref)
		return models.Summary{}, false
	}
	return e.summary, true
}

// Sweep drops expired entries and returns how many were removed.
func (s *SummaryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for ref, e := range s.items {
		if !now.Before(e.expires) {
			delete(s.items, ref)
			removed++
		}
	}
	return removed
}
