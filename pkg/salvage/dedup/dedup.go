// Package dedup suppresses duplicate recovery candidates using a bounded
// set of content hashes. The set evicts in strict FIFO order so memory
// stays within the session's budget on arbitrarily large drives.
package dedup

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// HashPrefixSize is the number of leading content bytes hashed for
// duplicate detection. One filesystem block is enough to tell real files
// apart while keeping reads cheap for large candidates.
const HashPrefixSize = 4096

// trimFraction is the portion of capacity kept by Trim.
const trimFraction = 0.7

// Hash returns the 64-bit content hash of a candidate prefix. Input longer
// than HashPrefixSize is truncated so equal files always hash equal
// regardless of how much of them was read.
func Hash(prefix []byte) uint64 {
	if len(prefix) > HashPrefixSize {
		prefix = prefix[:HashPrefixSize]
	}
	sum := blake3.Sum256(prefix)
	return binary.LittleEndian.Uint64(sum[:8])
}

// Set is a bounded FIFO set of content hashes. It is not safe for
// concurrent use; the engine is single-threaded.
type Set struct {
	capacity int
	ring     []uint64
	head     int
	size     int
	members  map[uint64]struct{}
}

// New creates a set holding at most capacity hashes. The backing ring
// grows on demand, so a large capacity costs nothing until the set fills.
func New(capacity int) *Set {
	if capacity < 1 {
		capacity = 1
	}
	initial := capacity
	if initial > 1024 {
		initial = 1024
	}
	return &Set{
		capacity: capacity,
		ring:     make([]uint64, initial),
		members:  make(map[uint64]struct{}),
	}
}

// Seen reports whether sum was already recorded, inserting it when new.
// A 64-bit collision is indistinguishable from a true duplicate and is
// reported as one. When the set is full the single oldest entry is evicted
// to make room.
func (s *Set) Seen(sum uint64) bool {
	if _, ok := s.members[sum]; ok {
		return true
	}
	if s.size == s.capacity {
		s.evictOldest()
	} else if s.size == len(s.ring) {
		s.grow()
	}
	s.ring[(s.head+s.size)%len(s.ring)] = sum
	s.size++
	s.members[sum] = struct{}{}
	return false
}

// Trim evicts the oldest entries until the set holds at most 70% of its
// capacity. The engine calls this on its cleanup cadence.
func (s *Set) Trim() {
	target := int(float64(s.capacity) * trimFraction)
	for s.size > target {
		s.evictOldest()
	}
}

// Len returns the number of hashes currently held.
func (s *Set) Len() int {
	return s.size
}

// Cap returns the maximum number of hashes the set will hold.
func (s *Set) Cap() int {
	return s.capacity
}

func (s *Set) evictOldest() {
	delete(s.members, s.ring[s.head])
	s.head = (s.head + 1) % len(s.ring)
	s.size--
}

// grow doubles the ring, unwrapping entries into FIFO order.
func (s *Set) grow() {
	next := len(s.ring) * 2
	if next > s.capacity {
		next = s.capacity
	}
	ring := make([]uint64, next)
	for i := 0; i < s.size; i++ {
		ring[i] = s.ring[(s.head+i)%len(s.ring)]
	}
	s.ring = ring
	s.head = 0
}
