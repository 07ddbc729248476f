package watermark

import (
	"image"
	"math"
)

const maxIntensity = 255.0

// Blend composites overlay into bg at the placement rectangle, mutating bg in
// place. bg must have exactly one owner for the duration of the call; the
// same buffer is the result.
//
// The per-channel mask is the overlay's own color magnitude scaled by
// opacity, not its alpha channel: an overlay with no meaningful alpha blends
// as if fully opaque. When the region mean luminance is above half intensity
// the overlay colors are inverted to keep contrast against a bright
// background; the invert flag inverts once more, so the two decisions combine
// as XOR. The rectangle is re-checked against the background bounds even
// though Select already validated it.
func Blend(bg, overlay *image.NRGBA, pl Placement, opacity float64, invert bool) error {
	bgSize := SizeOf(bg)
	if pl.Box.Width() > bgSize.W || pl.Box.Height() > bgSize.H {
		return ErrOversizedOverlay
	}

	autoInvert := pl.Stat.Mean/maxIntensity > 0.5
	flip := autoInvert != invert

	ovBounds := overlay.Bounds()
	for y := 0; y < pl.Box.Height(); y++ {
		by := pl.Box.Y0 + y
		if by < 0 || by >= bgSize.H {
			continue
		}
		for x := 0; x < pl.Box.Width(); x++ {
			bx := pl.Box.X0 + x
			if bx < 0 || bx >= bgSize.W {
				continue
			}
			if x >= ovBounds.Dx() || y >= ovBounds.Dy() {
				continue
			}

			bi := bg.PixOffset(bx, by)
			oi := overlay.PixOffset(ovBounds.Min.X+x, ovBounds.Min.Y+y)
			for c := 0; c < 3; c++ {
				ov := float64(overlay.Pix[oi+c])
				mask := ov / maxIntensity * opacity
				if flip {
					ov = maxIntensity - ov
				}
				res := (1-mask)*float64(bg.Pix[bi+c]) + mask*ov
				bg.Pix[bi+c] = uint8(math.Round(math.Min(math.Max(res, 0), maxIntensity)))
			}
		}
	}
	return nil
}
