package monitor

import (
	"fmt"
	"time"
)

// StatusRecord is the result of one analysis pass over a freshly
// ticked frame.
type StatusRecord struct {
	Timestamp     time.Time
	Width, Height int
	BitDepth      int
	Format        string
	Endian        string
	Dominant      uint32 // 0xRRGGBB
	Unchanged     time.Duration
	Changed       bool
	Discontinuity bool
	Samples       int
}

// Line renders the record as the one-line status format:
// timestamp, geometry, depth, format, endianness, dominant color and
// how long the content has been unchanged.
func (r *StatusRecord) Line() string {
	return fmt.Sprintf("%s %dx%d %d-bit %s %s rgb=%06X unchanged=%.2fs",
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Width, r.Height, r.BitDepth, r.Format, r.Endian,
		r.Dominant, r.Unchanged.Seconds())
}
