// Package version builds the append-only version vectors attached to every
// announced file record.
package version

import "crypto/sha256"

// Counter is one entry of a version vector: a device-id projection paired
// with the sequence value that device last announced.
type Counter struct {
	ID    uint64
	Value uint64
}

// Vector is an ordered, append-only list of Counters.
type Vector struct {
	Counters []Counter
}

// Build returns a new Vector holding every counter of prev, in order,
// followed by one new counter for localID/sequence. It never reorders,
// dedupes, or collapses an existing counter for the same device — a
// counter is appended even if localID already appears earlier in prev.
func Build(prev Vector, localID, sequence uint64) Vector {
	next := make([]Counter, len(prev.Counters), len(prev.Counters)+1)
	copy(next, prev.Counters)
	next = append(next, Counter{ID: localID, Value: sequence})
	return Vector{Counters: next}
}

// Last returns the most recently appended counter and true, or the zero
// Counter and false if the vector is empty.
func (v Vector) Last() (Counter, bool) {
	if len(v.Counters) == 0 {
		return Counter{}, false
	}
	return v.Counters[len(v.Counters)-1], true
}

// ProjectDeviceID projects a device identity to the u64 used in version
// vector counters: the first 8 bytes of the SHA-256 of the device id,
// interpreted big-endian.
func ProjectDeviceID(id []byte) uint64 {
	sum := sha256.Sum256(id)
	var v uint64
	for _, b := range sum[:8] {
		v = v<<8 | uint64(b)
	}
	return v
}
