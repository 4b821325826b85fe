// Package sampler yields the sparse grid of coordinates scanned per
// frame. Sampling cost stays O(width·height/S²) regardless of
// resolution; the per-frame phase jitter walks the grid through the
// sub-pixel offsets over successive frames so periodic fine detail is
// not permanently missed by a fixed sub-grid.
package sampler

// Jitter constants. Coprime with the default step so the phase cycles
// through many offsets before repeating.
const (
	DefaultStep    = 16
	DefaultJitterX = 7
	DefaultJitterY = 11
)

// Grid is a finite, restartable sequence of (x, y) sample coordinates,
// iterated top-to-bottom and left-to-right within a row.
type Grid struct {
	width, height  int
	step           int
	phaseX, phaseY int
	x, y           int
}

// New builds the grid for one frame. frameIndex shifts the phase:
// phase = (frameIndex·jitter) mod step on each axis.
func New(width, height, step int, frameIndex uint64, jx, jy int) *Grid {
	if step <= 0 {
		step = DefaultStep
	}
	g := &Grid{
		width:  width,
		height: height,
		step:   step,
		phaseX: int(frameIndex * uint64(jx) % uint64(step)),
		phaseY: int(frameIndex * uint64(jy) % uint64(step)),
	}
	g.Reset()
	return g
}

// Reset restarts iteration from the first coordinate of the same
// phase-shifted grid.
func (g *Grid) Reset() {
	g.x = g.phaseX
	g.y = g.phaseY
}

// Next returns the next coordinate, or ok=false once the grid is
// exhausted.
func (g *Grid) Next() (x, y int, ok bool) {
	if g.y >= g.height || g.x >= g.width {
		return 0, 0, false
	}
	x, y = g.x, g.y
	g.x += g.step
	if g.x >= g.width {
		g.x = g.phaseX
		g.y += g.step
	}
	return x, y, true
}

// Count returns how many samples a full iteration yields.
func (g *Grid) Count() int {
	if g.phaseX >= g.width || g.phaseY >= g.height {
		return 0
	}
	cols := (g.width - g.phaseX + g.step - 1) / g.step
	rows := (g.height - g.phaseY + g.step - 1) / g.step
	return cols * rows
}
