package monitor

import "scalermon/pkg/pixel"

// Histogram counts quantized colors across one sampling pass. Slots
// are tagged with the epoch that last touched them, so advancing the
// epoch invalidates the whole table without an O(bins) clear; reset
// cost stays proportional to the samples actually taken.
type Histogram struct {
	fine      bool // 5-6-5 keyspace instead of 4 bits per channel
	epoch     uint32
	slots     []histSlot
	bestKey   int
	bestCount uint32
}

type histSlot struct {
	epoch uint32
	count uint32
}

const (
	coarseBins = 4096  // 4-4-4
	fineBins   = 65536 // 5-6-5
)

// NewHistogram allocates the bin table once. fine selects the native
// 5-6-5 keyspace (65536 bins) over 4 bits per channel (4096 bins).
func NewHistogram(fine bool) *Histogram {
	n := coarseBins
	if fine {
		n = fineBins
	}
	return &Histogram{fine: fine, slots: make([]histSlot, n)}
}

// BeginPass starts a new epoch. All bins from earlier passes now read
// as zero.
func (h *Histogram) BeginPass() {
	h.epoch++
	h.bestKey = 0
	h.bestCount = 0
}

// Add tallies one sampled pixel and keeps the running mode current, so
// no second pass over the table is needed. Ties keep the key that
// reached the winning count first in scan order.
func (h *Histogram) Add(r, g, b uint8) {
	var key int
	if h.fine {
		key = int(r>>3)<<11 | int(g>>2)<<5 | int(b>>3)
	} else {
		key = int(r>>4)<<8 | int(g>>4)<<4 | int(b>>4)
	}
	s := &h.slots[key]
	if s.epoch != h.epoch {
		s.epoch = h.epoch
		s.count = 1
	} else {
		s.count++
	}
	if s.count > h.bestCount {
		h.bestCount = s.count
		h.bestKey = key
	}
}

// Dominant decodes the winning bin back to 8-bit RGB with the same bit
// replication the pixel decoder uses.
func (h *Histogram) Dominant() (r, g, b uint8) {
	if h.fine {
		return pixel.Expand5(uint8(h.bestKey >> 11)),
			pixel.Expand6(uint8(h.bestKey >> 5)),
			pixel.Expand5(uint8(h.bestKey))
	}
	return pixel.Expand4(uint8(h.bestKey >> 8)),
		pixel.Expand4(uint8(h.bestKey >> 4)),
		pixel.Expand4(uint8(h.bestKey))
}

// BestCount returns the sample count of the dominant bin for the
// current pass.
func (h *Histogram) BestCount() uint32 { return h.bestCount }
