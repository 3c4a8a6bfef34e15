package store

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

const latestKeyPrefix = "latest:"

// CachedStore decorates a ReadingStore with a ristretto cache for the
// latest-reading hot path queried by dashboards on every refresh.
type CachedStore struct {
	ReadingStore
	cache *ristretto.Cache
}

func NewCachedStore(inner ReadingStore, cache *ristretto.Cache) *CachedStore {
	return &CachedStore{ReadingStore: inner, cache: cache}
}

func (s *CachedStore) Save(ctx context.Context, r domain.Reading) (bool, error) {
	stored, err := s.ReadingStore.Save(ctx, r)
	if err != nil {
		return false, err
	}
	if stored {
		s.refresh(r)
	}
	return stored, nil
}

func (s *CachedStore) Latest(ctx context.Context, ownerRef string) (*domain.Reading, error) {
	if v, ok := s.cache.Get(latestKeyPrefix + ownerRef); ok {
		if r, ok := v.(domain.Reading); ok {
			cp := r
			return &cp, nil
		}
	}
	latest, err := s.ReadingStore.Latest(ctx, ownerRef)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		s.cache.Set(latestKeyPrefix+ownerRef, *latest, 1)
	}
	return latest, nil
}

func (s *CachedStore) DeleteOlderThan(ctx context.Context, ageDays int) (int64, error) {
	count, err := s.ReadingStore.DeleteOlderThan(ctx, ageDays)
	if err == nil && count > 0 {
		s.cache.Clear()
	}
	return count, err
}

// refresh replaces the cached latest entry when the new reading is at least
// as recent. Older timestamps can legitimately arrive later from the poll
// path, so compare before overwriting.
func (s *CachedStore) refresh(r domain.Reading) {
	for _, key := range []string{latestKeyPrefix, latestKeyPrefix + r.OwnerRef} {
		if v, ok := s.cache.Get(key); ok {
			if cur, ok := v.(domain.Reading); ok && cur.Timestamp.After(r.Timestamp) {
				continue
			}
		}
		s.cache.Set(key, r, 1)
	}
}
