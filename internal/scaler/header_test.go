package scaler

import (
	"errors"
	"testing"

	"scalermon/pkg/pixel"
)

// memBuf is an in-memory stand-in for the mapped window.
type memBuf []byte

func (m memBuf) Bytes(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(m) {
		return nil, errors.New("out of range")
	}
	return m[off : off+n], nil
}

func (m memBuf) ByteAt(off int) (byte, error) {
	b, err := m.Bytes(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func putBE(buf []byte, off, v int) {
	buf[off] = byte(v >> 8)
	buf[off+1] = byte(v)
}

// v1Header builds a valid default-revision header block.
func v1Header(width, height, stride int, format byte) memBuf {
	buf := make(memBuf, 32)
	buf[0], buf[1] = 0x01, 0x01
	putBE(buf, 2, 18) // framebuffer offset
	buf[4] = format
	buf[5] = 0 // little-endian pixels
	putBE(buf, 6, width)
	putBE(buf, 8, height)
	putBE(buf, 10, stride)
	putBE(buf, 12, width)
	putBE(buf, 14, height)
	buf[16] = 0 // frame counter
	return buf
}

func TestParseValidHeader(t *testing.T) {
	buf := v1Header(640, 480, 1920, 1)

	hdr, err := Parse(buf, DefaultLayout())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if hdr.Width != 640 || hdr.Height != 480 {
		t.Errorf("geometry = %s, want 640x480", hdr.Geometry())
	}
	if hdr.Stride != 1920 {
		t.Errorf("Stride = %d, want 1920", hdr.Stride)
	}
	if hdr.Format != pixel.RGB888 {
		t.Errorf("Format = %s, want RGB888", hdr.Format)
	}
	if hdr.Order != pixel.LittleEndian {
		t.Errorf("Order = %s, want little", hdr.Order)
	}
	if len(hdr.BufferOffsets) != 1 || hdr.BufferOffsets[0] != 18 {
		t.Errorf("BufferOffsets = %v, want [18]", hdr.BufferOffsets)
	}
}

func TestParseBigEndianFields(t *testing.T) {
	// Width 640 = 0x0280 stored big-endian must not be read as 0x8002
	buf := v1Header(640, 480, 1920, 1)
	if buf[6] != 0x02 || buf[7] != 0x80 {
		t.Fatalf("test header not big-endian: % X", buf[6:8])
	}

	hdr, err := Parse(buf, DefaultLayout())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if hdr.Width != 640 {
		t.Errorf("Width = %d, want 640", hdr.Width)
	}
}

func TestParseBadMagic(t *testing.T) {
	buf := v1Header(640, 480, 1920, 1)
	copy(buf, "XXXX")

	_, err := Parse(buf, DefaultLayout())
	if err == nil {
		t.Fatal("Parse() should fail on bad magic")
	}
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Errorf("error = %T, want *FormatError", err)
	}
}

func TestParseUnknownFormatCode(t *testing.T) {
	buf := v1Header(640, 480, 1920, 99)

	_, err := Parse(buf, DefaultLayout())
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Errorf("error = %v, want *FormatError", err)
	}
}

func TestParseRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name                  string
		width, height, stride int
	}{
		{"zero width", 0, 480, 1920},
		{"zero height", 640, 0, 1920},
		{"stride below row", 640, 480, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := v1Header(tt.width, tt.height, tt.stride, 1)
			if _, err := Parse(buf, DefaultLayout()); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}

func TestParseV2Layout(t *testing.T) {
	layouts := Layouts()
	l := layouts["v2"]

	buf := make(memBuf, 32)
	copy(buf, l.Magic)
	buf[l.TypeOff] = l.TypeTag
	buf[l.FormatOff] = 3 // ARGB8888
	buf[l.EndianOff] = 1 // big-endian pixels
	// little-endian 16-bit fields on this revision
	buf[l.HeaderLenOff] = 32
	buf[l.WidthOff] = 0x80
	buf[l.WidthOff+1] = 0x02 // 640
	buf[l.HeightOff] = 0xE0
	buf[l.HeightOff+1] = 0x01 // 480
	buf[l.StrideOff] = 0x00
	buf[l.StrideOff+1] = 0x0A // 2560
	buf[l.ExtraBufferOffs[0]] = 64
	buf[l.ExtraBufferOffs[1]] = 96

	hdr, err := Parse(buf, l)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if hdr.Width != 640 || hdr.Height != 480 || hdr.Stride != 2560 {
		t.Errorf("mode = %dx%d stride %d, want 640x480 stride 2560", hdr.Width, hdr.Height, hdr.Stride)
	}
	if hdr.Format != pixel.ARGB8888 || hdr.Order != pixel.BigEndian {
		t.Errorf("format = %s/%s, want ARGB8888/big", hdr.Format, hdr.Order)
	}
	if len(hdr.BufferOffsets) != 3 {
		t.Errorf("BufferOffsets = %v, want three buffers", hdr.BufferOffsets)
	}

	// Wrong type tag is a format error
	buf[l.TypeOff] = 0x7F
	_, err = Parse(buf, l)
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Errorf("error = %v, want *FormatError", err)
	}
}

func TestSameMode(t *testing.T) {
	base := func() *Header {
		return &Header{Width: 640, Height: 480, Stride: 1920, Format: pixel.RGB888, Order: pixel.LittleEndian}
	}

	h := base()
	if !h.SameMode(base()) {
		t.Error("identical headers should be the same mode")
	}
	if h.SameMode(nil) {
		t.Error("nil previous header is never the same mode")
	}

	tests := []struct {
		name   string
		mutate func(*Header)
	}{
		{"width", func(h *Header) { h.Width = 320 }},
		{"height", func(h *Header) { h.Height = 240 }},
		{"stride", func(h *Header) { h.Stride = 2048 }},
		{"format", func(h *Header) { h.Format = pixel.RGB565 }},
		{"order", func(h *Header) { h.Order = pixel.BigEndian }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.mutate(other)
			if other.SameMode(h) {
				t.Error("changed header should be a discontinuity")
			}
		})
	}
}

func TestBufferFor(t *testing.T) {
	h := &Header{BufferOffsets: []int{100, 200, 300}}
	for counter, want := range map[byte]int{0: 100, 1: 200, 2: 300, 3: 100, 7: 200} {
		if got := h.BufferFor(counter); got != want {
			t.Errorf("BufferFor(%d) = %d, want %d", counter, got, want)
		}
	}
}

func TestCounter(t *testing.T) {
	buf := v1Header(640, 480, 1920, 1)
	buf[16] = 42

	l := DefaultLayout()
	c, err := l.Counter(buf)
	if err != nil {
		t.Fatalf("Counter() error: %v", err)
	}
	if c != 42 {
		t.Errorf("Counter() = %d, want 42", c)
	}
}
