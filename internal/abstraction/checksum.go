package abstraction

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Checksum fingerprints the postflop centroid tables actually wired into an
// abstraction (plus the fixed preflop class count), so a strategy artifact
// can record what abstraction it was trained against (spec.md §6's
// abstraction_checksum header field) and a query-time mismatch is
// detectable rather than silently misbucketing. Caller passes the flop,
// turn, and river tables in that fixed order.
func Checksum(flop, turn, river CentroidTable) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(PreflopBucketCount))
	h.Write(buf[:])

	for _, t := range []CentroidTable{flop, turn, river} {
		binary.LittleEndian.PutUint64(buf[:], uint64(t.Street))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(t.K))
		h.Write(buf[:])
		for _, c := range t.Centroids {
			for _, v := range c {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				h.Write(buf[:])
			}
		}
	}
	return h.Sum64()
}
