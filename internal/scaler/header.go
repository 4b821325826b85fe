// Package scaler interprets the hardware-defined header the video
// scaler writes at the base of its shared memory region.
//
// Hardware revisions disagree on exact byte offsets, so the layout is
// data (Layout), not constants: a Layout describes one revision and
// everything else in the package is written against it.
package scaler

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"scalermon/pkg/pixel"
)

// Reader is the read side of the mapped scaler window. Implemented by
// shmem.Window; tests substitute an in-memory buffer.
type Reader interface {
	Bytes(off, n int) ([]byte, error)
	ByteAt(off int) (byte, error)
}

// FormatError reports a header whose magic or type tag does not match
// the configured hardware revision. Fatal on the very first read.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "scaler header: " + e.Reason
}

// Layout describes where one hardware revision places each header
// field. All offsets are relative to the window base. Multi-byte
// fields are 16 bits wide; BigEndianFields selects their byte order
// independently of the host.
type Layout struct {
	Name  string
	Magic []byte // expected bytes at offset 0
	// TypeOff/TypeTag identify the header type byte; TypeOff < 0 means
	// the revision has no type tag.
	TypeOff         int
	TypeTag         byte
	BigEndianFields bool

	HeaderLenOff int // framebuffer offset of the primary buffer
	FormatOff    int // pixel format code (one byte)
	EndianOff    int // pixel endianness flag (one byte, 0=little)
	WidthOff     int
	HeightOff    int
	StrideOff    int
	OutWidthOff  int
	OutHeightOff int
	CounterOff   int // monotonically incrementing frame counter byte

	// ExtraBufferOffs lists the field offsets holding additional
	// framebuffer offsets on multi-buffered revisions.
	ExtraBufferOffs []int
}

// DefaultLayout returns the layout of the shipped scaler revision:
// two-byte magic, big-endian 16-bit fields, frame counter in the byte
// after the output geometry, single-buffered.
func DefaultLayout() Layout {
	return Layout{
		Name:            "v1",
		Magic:           []byte{0x01, 0x01},
		TypeOff:         -1,
		BigEndianFields: true,
		HeaderLenOff:    2,
		FormatOff:       4,
		EndianOff:       5,
		WidthOff:        6,
		HeightOff:       8,
		StrideOff:       10,
		OutWidthOff:     12,
		OutHeightOff:    14,
		CounterOff:      16,
	}
}

// Layouts maps revision names accepted in configuration to layouts.
// "v2" is the triple-buffered revision with a tagged four-byte magic
// and little-endian fields.
func Layouts() map[string]Layout {
	v2 := Layout{
		Name:            "v2",
		Magic:           []byte{'S', 'C', 'L', 'R'},
		TypeOff:         4,
		TypeTag:         0x02,
		BigEndianFields: false,
		HeaderLenOff:    6,
		FormatOff:       5,
		EndianOff:       8,
		WidthOff:        10,
		HeightOff:       12,
		StrideOff:       14,
		OutWidthOff:     16,
		OutHeightOff:    18,
		CounterOff:      9,
		ExtraBufferOffs: []int{20, 22},
	}
	return map[string]Layout{"v1": DefaultLayout(), "v2": v2}
}

// span returns how many bytes of the window the header occupies.
func (l Layout) span() int {
	max := len(l.Magic)
	ends := []int{l.TypeOff + 1, l.FormatOff + 1, l.EndianOff + 1, l.CounterOff + 1}
	for _, off := range append([]int{
		l.HeaderLenOff, l.WidthOff, l.HeightOff, l.StrideOff,
		l.OutWidthOff, l.OutHeightOff,
	}, l.ExtraBufferOffs...) {
		ends = append(ends, off+2)
	}
	for _, end := range ends {
		if end > max {
			max = end
		}
	}
	return max
}

func (l Layout) u16(raw []byte, off int) int {
	if l.BigEndianFields {
		return int(raw[off])<<8 | int(raw[off+1])
	}
	return int(raw[off]) | int(raw[off+1])<<8
}

// Counter reads the frame counter byte. It is re-read every poll
// iteration; the hardware increments it once per completed frame.
func (l Layout) Counter(r Reader) (byte, error) {
	return r.ByteAt(l.CounterOff)
}

// Header is the decoded description of the current frame layout. It is
// transient: the hardware may reconfigure at any time and carries no
// valid flag, so the header is re-parsed and re-validated every poll.
type Header struct {
	Width, Height int
	Stride        int
	OutW, OutH    int
	Format        pixel.Format
	Order         pixel.ByteOrder
	BufferOffsets []int
}

// Parse decodes and validates the header per the given layout.
// A mismatched magic or type tag yields *FormatError.
func Parse(r Reader, l Layout) (*Header, error) {
	raw, err := r.Bytes(0, l.span())
	if err != nil {
		return nil, errors.Wrap(err, "read scaler header")
	}

	if !bytes.Equal(raw[:len(l.Magic)], l.Magic) {
		return nil, &FormatError{Reason: fmt.Sprintf("magic % X does not match revision %s", raw[:len(l.Magic)], l.Name)}
	}
	if l.TypeOff >= 0 && raw[l.TypeOff] != l.TypeTag {
		return nil, &FormatError{Reason: fmt.Sprintf("header type tag 0x%02X, revision %s expects 0x%02X", raw[l.TypeOff], l.Name, l.TypeTag)}
	}

	format, err := pixel.FromCode(uint16(raw[l.FormatOff]))
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	order := pixel.LittleEndian
	if raw[l.EndianOff] != 0 {
		order = pixel.BigEndian
	}

	h := &Header{
		Width:  l.u16(raw, l.WidthOff),
		Height: l.u16(raw, l.HeightOff),
		Stride: l.u16(raw, l.StrideOff),
		OutW:   l.u16(raw, l.OutWidthOff),
		OutH:   l.u16(raw, l.OutHeightOff),
		Format: format,
		Order:  order,
	}
	h.BufferOffsets = []int{l.u16(raw, l.HeaderLenOff)}
	for _, off := range l.ExtraBufferOffs {
		h.BufferOffsets = append(h.BufferOffsets, l.u16(raw, off))
	}

	if h.Width <= 0 || h.Height <= 0 {
		return nil, errors.Errorf("scaler header: invalid geometry %dx%d", h.Width, h.Height)
	}
	if h.Stride < h.Width*format.BytesPerPixel() {
		return nil, errors.Errorf("scaler header: stride %d below %d for %d px of %s",
			h.Stride, h.Width*format.BytesPerPixel(), h.Width, format)
	}
	return h, nil
}

// BufferFor selects the framebuffer the given counter value refers to
// on multi-buffered revisions.
func (h *Header) BufferFor(counter byte) int {
	return h.BufferOffsets[int(counter)%len(h.BufferOffsets)]
}

// SameMode reports whether prev describes the same frame layout.
// A false result between two polls is a discontinuity: the engine
// resets its change-detection state instead of treating it as content
// change.
func (h *Header) SameMode(prev *Header) bool {
	if prev == nil {
		return false
	}
	return h.Width == prev.Width && h.Height == prev.Height &&
		h.Stride == prev.Stride && h.Format == prev.Format && h.Order == prev.Order
}

// Geometry returns "WxH" for status lines.
func (h *Header) Geometry() string {
	return fmt.Sprintf("%dx%d", h.Width, h.Height)
}
