package watermark

import (
	"errors"
	"fmt"
	"image"
)

// ErrOversizedOverlay is returned when the overlay rectangle exceeds the
// background bounds in either dimension. This is a precondition violation, so
// the caller aborts the watermark step instead of retrying.
var ErrOversizedOverlay = errors.New("overlay is too large for background image")

// Placement is the result of position selection: the chosen anchor, its
// pixel rectangle and the luminance statistics of that region. Callers use it
// for blending decisions and diagnostics.
type Placement struct {
	Pos  Position
	Box  Box
	Stat Stat
}

// String renders the placement as "anchor (x0,y0)-(x1,y1)".
func (p Placement) String() string {
	return fmt.Sprintf("%s %s", p.Pos, p.Box)
}

// Select picks the overlay placement on a luminance plane.
//
// With forced == nil every candidate anchor except Center is scored and the
// one with the lowest luminance stddev wins: a flat region is where the
// watermark distracts least. Ties go to the earliest candidate in enumeration
// order, so selection is deterministic. A non-nil forced position skips the
// search but still returns region stats for the blending decision.
func Select(lum *image.Gray, overlay Size, padding float64, forced *Position) (Placement, error) {
	bg := SizeOf(lum)
	if overlay.W > bg.W || overlay.H > bg.H {
		return Placement{}, ErrOversizedOverlay
	}

	if forced != nil {
		box := forced.Rect(bg, overlay, padding)
		return Placement{Pos: *forced, Box: box, Stat: RegionStats(lum, box)}, nil
	}

	var best Placement
	found := false
	for _, p := range autoPositions {
		box := p.Rect(bg, overlay, padding)
		st := RegionStats(lum, box)
		if !found || st.StdDev < best.Stat.StdDev {
			best = Placement{Pos: p, Box: box, Stat: st}
			found = true
		}
	}
	return best, nil
}
