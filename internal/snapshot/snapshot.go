// Package snapshot grabs one full frame from the scaler window and
// writes it out as a PNG, with an optional scaled copy and a YUV plane
// export for downstream encoders.
package snapshot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"scalermon/internal/scaler"
	"scalermon/pkg/pixel"
)

// Grab decodes the current frame into an image. Unlike the monitor's
// sparse pass this walks every pixel; the frame may still tear while
// being read, which is acceptable for screenshots.
func Grab(mem scaler.Reader, layout scaler.Layout) (*image.NRGBA, error) {
	hdr, err := scaler.Parse(mem, layout)
	if err != nil {
		return nil, err
	}
	counter, err := layout.Counter(mem)
	if err != nil {
		return nil, err
	}

	frame, err := mem.Bytes(hdr.BufferFor(counter), hdr.Stride*hdr.Height)
	if err != nil {
		return nil, errors.Wrap(err, "read frame for snapshot")
	}

	bpp := hdr.Format.BytesPerPixel()
	img := image.NewNRGBA(image.Rect(0, 0, hdr.Width, hdr.Height))
	for y := 0; y < hdr.Height; y++ {
		row := frame[y*hdr.Stride:]
		for x := 0; x < hdr.Width; x++ {
			r, g, b := pixel.Decode(hdr.Format, hdr.Order, row[x*bpp:x*bpp+bpp])
			img.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
		}
	}
	return img, nil
}

// WritePNG encodes img to dir/name, creating dir if needed, and
// returns the full path.
func WritePNG(img image.Image, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", errors.Wrap(err, "create snapshot directory")
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create snapshot file")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", errors.Wrap(err, "encode snapshot")
	}
	return path, nil
}

// Scaled returns a copy resized to the given width, keeping the aspect
// ratio.
func Scaled(img image.Image, width int) image.Image {
	return resize.Resize(uint(width), 0, img, resize.Bilinear)
}

// YUVPlanes converts the frame to planar BT.601 Y'UV for consumers
// that want luma/chroma instead of RGB.
func YUVPlanes(img *image.NRGBA) (y, u, v []byte) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	y = make([]byte, n)
	u = make([]byte, n)
	v = make([]byte, n)
	i := 0
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			c := img.NRGBAAt(px, py)
			y[i], u[i], v[i] = pixel.RGBToYUV(c.R, c.G, c.B)
			i++
		}
	}
	return y, u, v
}
