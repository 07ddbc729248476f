// Package watermark implements automatic watermark placement: region
// luminance scoring, anchor geometry, contrast-aware blending and text
// rasterization. All functions operate on in-memory buffers and do no I/O;
// the caller owns the background buffer passed to Blend.
package watermark

import (
	"fmt"
	"image"
)

// Position is a named anchor for overlay placement.
type Position int

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
	BottomCenter
	Center
)

// autoPositions is the candidate set for automatic placement, in tie-break
// order. Center is reserved for explicit selection.
var autoPositions = [...]Position{TopLeft, TopRight, BottomLeft, BottomRight, BottomCenter}

var positionNames = map[Position]string{
	TopLeft:      "top-left",
	TopRight:     "top-right",
	BottomLeft:   "bottom-left",
	BottomRight:  "bottom-right",
	BottomCenter: "bottom-center",
	Center:       "center",
}

func (p Position) String() string {
	if s, ok := positionNames[p]; ok {
		return s
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// ParsePosition maps a config string to a Position.
func ParsePosition(s string) (Position, error) {
	for p, name := range positionNames {
		if s == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown watermark position %q", s)
}

// Size is the pixel dimensions of an image or overlay.
type Size struct {
	W, H int
}

// SizeOf returns the Size of an image buffer.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{W: b.Dx(), H: b.Dy()}
}

// Box is a pixel rectangle, X0<X1 and Y0<Y1.
type Box struct {
	X0, Y0, X1, Y1 int
}

func (b Box) Width() int  { return b.X1 - b.X0 }
func (b Box) Height() int { return b.Y1 - b.Y0 }

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.X0, b.Y0, b.X1, b.Y1)
}

// Rect computes the rectangle for the overlay at this anchor. The inset on
// each axis is padding times the background dimension on that axis; Center
// has no inset. Offsets are truncated to whole pixels. Pure geometry: the
// result may exceed the background bounds for an oversized overlay, which
// Select and Blend reject.
func (p Position) Rect(bg, overlay Size, padding float64) Box {
	padX := int(padding * float64(bg.W))
	padY := int(padding * float64(bg.H))

	var x0, y0 int
	switch p {
	case TopLeft:
		x0, y0 = padX, padY
	case TopRight:
		x0, y0 = bg.W-overlay.W-padX, padY
	case BottomLeft:
		x0, y0 = padX, bg.H-overlay.H-padY
	case BottomRight:
		x0, y0 = bg.W-overlay.W-padX, bg.H-overlay.H-padY
	case BottomCenter:
		x0, y0 = bg.W/2-overlay.W/2, bg.H-overlay.H-padY
	case Center:
		x0, y0 = (bg.W-overlay.W)/2, (bg.H-overlay.H)/2
	}

	return Box{X0: x0, Y0: y0, X1: x0 + overlay.W, Y1: y0 + overlay.H}
}
