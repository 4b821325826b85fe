// Package pixel decodes raw scaler framebuffer pixels into 8-bit RGB.
package pixel

import "fmt"

// Format identifies the pixel packing the scaler is currently emitting.
type Format int

const (
	RGB565 Format = iota
	RGB888
	BGR888
	ARGB8888
	YUV422
)

// ByteOrder is the packing order of multi-byte pixels, taken from the
// scaler header's endianness flag.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// String returns the format name used in status lines and reports.
func (f Format) String() string {
	switch f {
	case RGB565:
		return "RGB565"
	case RGB888:
		return "RGB888"
	case BGR888:
		return "BGR888"
	case ARGB8888:
		return "ARGB8888"
	case YUV422:
		return "YUV422"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// BytesPerPixel returns the storage size of one pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB565, YUV422:
		return 2
	case RGB888, BGR888:
		return 3
	case ARGB8888:
		return 4
	}
	return 0
}

// BitDepth returns the bit depth reported alongside the format name.
func (f Format) BitDepth() int {
	return f.BytesPerPixel() * 8
}

// Expand5 widens a 5-bit channel to 8 bits by bit replication, so that
// 0 maps to 0 and 31 maps to 255 with no systematic darkening.
func Expand5(v uint8) uint8 {
	v &= 0x1F
	return v<<3 | v>>2
}

// Expand6 widens a 6-bit channel to 8 bits by bit replication.
func Expand6(v uint8) uint8 {
	v &= 0x3F
	return v<<2 | v>>4
}

// Expand4 widens a 4-bit channel to 8 bits by bit replication.
func Expand4(v uint8) uint8 {
	v &= 0x0F
	return v<<4 | v
}

// Decode extracts one pixel's normalized 8-bit RGB channels from raw.
// raw must hold at least BytesPerPixel bytes. Decode is pure: it reads
// only its arguments and keeps no state.
//
// The byte order applies to multi-byte pixel words (RGB565, ARGB8888).
// The 24-bit formats have no word to swap; their channel order is the
// RGB888/BGR888 sub-variant instead. YUV422 decodes luma only, which
// is all the monitoring core needs; full chroma handling lives in
// RGBToYUV's callers.
func Decode(f Format, order ByteOrder, raw []byte) (r, g, b uint8) {
	switch f {
	case RGB565:
		var v uint16
		if order == BigEndian {
			v = uint16(raw[0])<<8 | uint16(raw[1])
		} else {
			v = uint16(raw[0]) | uint16(raw[1])<<8
		}
		return Expand5(uint8(v >> 11)), Expand6(uint8(v >> 5)), Expand5(uint8(v))
	case RGB888:
		return raw[0], raw[1], raw[2]
	case BGR888:
		return raw[2], raw[1], raw[0]
	case ARGB8888:
		// The word is 0xAARRGGBB; alpha is dropped.
		if order == BigEndian {
			return raw[1], raw[2], raw[3]
		}
		return raw[2], raw[1], raw[0]
	case YUV422:
		y := raw[0]
		if order == BigEndian {
			y = raw[1]
		}
		l := clamp8((298*(int(y)-16) + 128) >> 8)
		return l, l, l
	}
	return 0, 0, 0
}

// RGBToYUV converts one RGB pixel to BT.601 Y'UV, matching the scaler
// hardware's expected studio-swing ranges (Y 16..235, U/V centered on
// 128). Used by the snapshot plane export.
func RGBToYUV(r, g, b uint8) (y, u, v uint8) {
	fr, fg, fb := float64(r), float64(g), float64(b)
	y = clamp8(int(0.257*fr + 0.504*fg + 0.098*fb + 16))
	u = clamp8(int(-0.148*fr - 0.291*fg + 0.439*fb + 128))
	v = clamp8(int(0.439*fr - 0.368*fg - 0.071*fb + 128))
	return
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// FromCode maps a header format-code byte to a Format. Unknown codes
// are rejected so the header validator can surface them.
func FromCode(code uint16) (Format, error) {
	switch code {
	case 0:
		return RGB565, nil
	case 1:
		return RGB888, nil
	case 2:
		return BGR888, nil
	case 3:
		return ARGB8888, nil
	case 4:
		return YUV422, nil
	}
	return 0, fmt.Errorf("unknown pixel format code %d", code)
}
