package monitor

import "time"

// FNV-1a parameters.
const (
	fnvOffset uint64 = 0xcbf29ce484222325
	fnvPrime  uint64 = 0x100000001b3
)

// Digest accumulates one sampling pass into a 64-bit FNV-1a hash.
type Digest uint64

// NewDigest returns a digest seeded with the FNV offset basis.
func NewDigest() Digest { return Digest(fnvOffset) }

// Fold mixes one sampled pixel's channels into the digest.
func (d *Digest) Fold(r, g, b uint8) {
	h := uint64(*d)
	h ^= uint64(r)
	h *= fnvPrime
	h ^= uint64(g)
	h *= fnvPrime
	h ^= uint64(b)
	h *= fnvPrime
	*d = Digest(h)
}

// Sum64 returns the accumulated hash.
func (d Digest) Sum64() uint64 { return uint64(d) }

// Fingerprint is the rolling content hash plus the timestamp of the
// last distinct value. Only this state and the memory window survive
// between poll cycles.
type Fingerprint struct {
	hash        uint64
	primed      bool
	lastChanged time.Time
}

// Observe compares a completed pass against the stored hash.
// An unchanged hash mutates nothing and reports how long the content
// has been stable; a new hash is stored and resets the clock.
func (f *Fingerprint) Observe(sum uint64, now time.Time) (changed bool, unchangedFor time.Duration) {
	if f.primed && sum == f.hash {
		return false, now.Sub(f.lastChanged)
	}
	f.hash = sum
	f.primed = true
	f.lastChanged = now
	return true, 0
}

// Reset clears the stored hash after a discontinuity. The next pass
// re-primes; a hash collision with the pre-reset content still counts
// as fresh.
func (f *Fingerprint) Reset(now time.Time) {
	f.hash = 0
	f.primed = false
	f.lastChanged = now
}
