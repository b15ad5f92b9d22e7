package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSnapshotInterval sets how often the summary snapshot is rebuilt.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithCapacity bounds the number of retained records. The oldest record is
// evicted first. Non-positive means unbounded.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		s.capacity = capacity
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
