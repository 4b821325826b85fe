package pixel

import "testing"

func TestExpandRoundTrip(t *testing.T) {
	// Bit replication must map the channel extremes exactly
	if got := Expand5(0); got != 0 {
		t.Errorf("Expand5(0) = %d, want 0", got)
	}
	if got := Expand5(31); got != 255 {
		t.Errorf("Expand5(31) = %d, want 255", got)
	}
	if got := Expand6(0); got != 0 {
		t.Errorf("Expand6(0) = %d, want 0", got)
	}
	if got := Expand6(63); got != 255 {
		t.Errorf("Expand6(63) = %d, want 255", got)
	}
	if got := Expand4(0); got != 0 {
		t.Errorf("Expand4(0) = %d, want 0", got)
	}
	if got := Expand4(15); got != 255 {
		t.Errorf("Expand4(15) = %d, want 255", got)
	}
}

func TestExpandAvoidsDarkening(t *testing.T) {
	// Plain left shifts would cap 5-bit channels at 248; replication
	// has to reach full scale monotonically
	prev := -1
	for v := uint8(0); v < 32; v++ {
		got := int(Expand5(v))
		if got <= prev {
			t.Fatalf("Expand5 not strictly increasing at %d", v)
		}
		prev = got
	}
}

func TestDecodeRGB565(t *testing.T) {
	tests := []struct {
		name    string
		order   ByteOrder
		raw     []byte
		r, g, b uint8
	}{
		{"red little", LittleEndian, []byte{0x00, 0xF8}, 255, 0, 0},
		{"red big", BigEndian, []byte{0xF8, 0x00}, 255, 0, 0},
		{"green little", LittleEndian, []byte{0xE0, 0x07}, 0, 255, 0},
		{"blue little", LittleEndian, []byte{0x1F, 0x00}, 0, 0, 255},
		{"white big", BigEndian, []byte{0xFF, 0xFF}, 255, 255, 255},
		{"black little", LittleEndian, []byte{0x00, 0x00}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := Decode(RGB565, tt.order, tt.raw)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Decode = (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestDecodeByteOrders(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		order   ByteOrder
		raw     []byte
		r, g, b uint8
	}{
		{"rgb888", RGB888, LittleEndian, []byte{10, 20, 30}, 10, 20, 30},
		{"bgr888", BGR888, LittleEndian, []byte{30, 20, 10}, 10, 20, 30},
		{"argb little", ARGB8888, LittleEndian, []byte{30, 20, 10, 0xFF}, 10, 20, 30},
		{"argb big", ARGB8888, BigEndian, []byte{0xFF, 10, 20, 30}, 10, 20, 30},
		{"argb ignores alpha", ARGB8888, LittleEndian, []byte{30, 20, 10, 0x00}, 10, 20, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := Decode(tt.format, tt.order, tt.raw)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Decode = (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestDecodeIsPure(t *testing.T) {
	raw := []byte{0x12, 0x34, 0x56, 0x78}
	for _, f := range []Format{RGB565, RGB888, BGR888, ARGB8888, YUV422} {
		r1, g1, b1 := Decode(f, LittleEndian, raw)
		for i := 0; i < 10; i++ {
			r, g, b := Decode(f, LittleEndian, raw)
			if r != r1 || g != g1 || b != b1 {
				t.Fatalf("%s: repeated decode diverged", f)
			}
		}
	}
}

func TestDecodeYUVLuma(t *testing.T) {
	// Y=16 is studio black, Y=235 studio white
	r, g, b := Decode(YUV422, LittleEndian, []byte{16, 128})
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("Y=16 decoded to (%d,%d,%d), want black", r, g, b)
	}
	r, g, b = Decode(YUV422, LittleEndian, []byte{235, 128})
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("Y=235 decoded to (%d,%d,%d), want white", r, g, b)
	}
}

func TestRGBToYUV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		y, u, v uint8
	}{
		{"black", 0, 0, 0, 16, 128, 128},
		{"red", 255, 0, 0, 81, 90, 239},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, u, v := RGBToYUV(tt.r, tt.g, tt.b)
			if y != tt.y || u != tt.u || v != tt.v {
				t.Errorf("RGBToYUV = (%d,%d,%d), want (%d,%d,%d)", y, u, v, tt.y, tt.u, tt.v)
			}
		})
	}

	// White luma lands on 235; chroma sits on the 128 centerline where
	// float truncation may round either way
	y, u, v := RGBToYUV(255, 255, 255)
	if y != 235 {
		t.Errorf("white luma = %d, want 235", y)
	}
	if u < 127 || u > 128 || v < 127 || v > 128 {
		t.Errorf("white chroma = (%d,%d), want centered on 128", u, v)
	}
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		format Format
		bpp    int
	}{
		{RGB565, 2},
		{RGB888, 3},
		{BGR888, 3},
		{ARGB8888, 4},
		{YUV422, 2},
	}

	for _, tt := range tests {
		if got := tt.format.BytesPerPixel(); got != tt.bpp {
			t.Errorf("%s.BytesPerPixel() = %d, want %d", tt.format, got, tt.bpp)
		}
		if got := tt.format.BitDepth(); got != tt.bpp*8 {
			t.Errorf("%s.BitDepth() = %d, want %d", tt.format, got, tt.bpp*8)
		}
	}
}

func TestFromCode(t *testing.T) {
	for code := uint16(0); code < 5; code++ {
		if _, err := FromCode(code); err != nil {
			t.Errorf("FromCode(%d) unexpected error: %v", code, err)
		}
	}
	if _, err := FromCode(99); err == nil {
		t.Error("FromCode(99) should fail")
	}
}

func BenchmarkDecodeRGB565(b *testing.B) {
	raw := []byte{0x34, 0x12}
	for i := 0; i < b.N; i++ {
		Decode(RGB565, LittleEndian, raw)
	}
}
