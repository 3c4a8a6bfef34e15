package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// MemoryStore is an in-process ReadingStore/AlertRuleStore used for tests
// and for running the agent without a database. The map key is the reading
// timestamp, which gives the same insert-if-absent semantics as the primary
// key in the postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	readings map[int64]domain.Reading
	rules    map[string]domain.AlertRule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		readings: make(map[int64]domain.Reading),
		rules:    make(map[string]domain.AlertRule),
	}
}

func (s *MemoryStore) Save(_ context.Context, r domain.Reading) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.Timestamp.UnixNano()
	if _, exists := s.readings[key]; exists {
		return false, nil
	}
	s.readings[key] = r
	return true, nil
}

func (s *MemoryStore) Latest(_ context.Context, ownerRef string) (*domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Reading
	for _, r := range s.readings {
		if ownerRef != "" && r.OwnerRef != ownerRef {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			cp := r
			latest = &cp
		}
	}
	return latest, nil
}

func (s *MemoryStore) Historical(_ context.Context, windowHours int, limit int, ownerRef string) ([]domain.Reading, error) {
	from := windowStart(time.Now(), windowHours)

	s.mu.RLock()
	var out []domain.Reading
	for _, r := range s.readings {
		if r.Timestamp.Before(from) {
			continue
		}
		if ownerRef != "" && r.OwnerRef != ownerRef {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, ageDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -ageDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, r := range s.readings {
		if r.Timestamp.Before(cutoff) {
			delete(s.readings, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateRule(_ context.Context, rule domain.AlertRule) (domain.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *MemoryStore) ListRules(_ context.Context) ([]domain.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteRule(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return false, nil
	}
	delete(s.rules, id)
	return true, nil
}
