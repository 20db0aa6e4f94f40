package cache

import "fmt"

// Unbounded is the CacheStats.MaxSize reported by caches without a size limit.
const Unbounded = -1

// Stats is either a CacheStats snapshot or the NoopStats marker.
type Stats interface {
	isStats()
}

// CacheStats is an occupancy snapshot.
type CacheStats struct {
	CacheSize int
	MaxSize   int
}

func (CacheStats) isStats() {}

// IsBounded reports whether MaxSize is a real limit.
func (s CacheStats) IsBounded() bool {
	return s.MaxSize != Unbounded
}

func (s CacheStats) String() string {
	if !s.IsBounded() {
		return fmt.Sprintf("CacheStats{size=%d, max=unbounded}", s.CacheSize)
	}
	return fmt.Sprintf("CacheStats{size=%d, max=%d}", s.CacheSize, s.MaxSize)
}

type noopStats struct{}

func (*noopStats) isStats() {}

func (*noopStats) String() string { return "NoopStats" }

// NoopStats is returned by caches that keep nothing. Compare against it by
// identity; it carries no data.
var NoopStats Stats = &noopStats{}
