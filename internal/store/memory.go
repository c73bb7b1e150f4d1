package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/cafe-discovery/internal/cafe"
)

var (
	// ErrNotFound is returned when no snapshot is cached for a search area.
	ErrNotFound = errors.New("no discovery snapshot for area")
)

// SnapshotHistory holds a time-ordered list of discovery snapshots for one
// search area key.
type SnapshotHistory struct {
	Snapshots []cafe.DiscoverySnapshot
}

// MemoryStore is a concurrency-safe in-memory snapshot cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: search area key, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per area
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new snapshot for an area and enforces retention.
func (s *MemoryStore) SaveSnapshot(key string, snapshot cafe.DiscoverySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots); i++ {
			if !history.Snapshots[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Snapshots) {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for an area.
func (s *MemoryStore) GetLatest(key string) (cafe.DiscoverySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return cafe.DiscoverySnapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}
