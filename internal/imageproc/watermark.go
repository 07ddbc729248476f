// Package imageproc provides operations for images: resizing, thumbnail
// generation and watermark application with automatic placement.
package imageproc

import (
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pixelmark/pixelmark/internal/watermark"
)

// WatermarkOpts carries the normalized watermark parameters. A nil Position
// enables the automatic placement search.
type WatermarkOpts struct {
	Position *watermark.Position
	Scale    float64
	Opacity  float64
	Padding  float64
	Invert   bool
}

// Watermarker overlays the watermark image onto the base image. The overlay
// is scaled to Scale of the background width, placed in the least-noisy
// candidate region (or the forced position) and blended with contrast-aware
// inversion. The chosen placement is returned for diagnostics.
func Watermarker(b, w io.Reader, opts WatermarkOpts, format imaging.Format) (io.Reader, int64, watermark.Placement, error) {
	if b == nil {
		return nil, 0, watermark.Placement{}, errors.New("nil-reader baseIMG provided")
	}
	if w == nil {
		return nil, 0, watermark.Placement{}, errors.New("nil-reader wmIMG provided")
	}

	base, err := decodeImage(b)
	if err != nil {
		return nil, 0, watermark.Placement{}, fmt.Errorf("decode base image: %w", err)
	}

	wm, err := decodeImage(w)
	if err != nil {
		return nil, 0, watermark.Placement{}, fmt.Errorf("decode watermark image: %w", err)
	}

	bg := imaging.Clone(base)

	// масштабируем watermark до доли ширины основы, сохраняя ратио
	if opts.Scale > 0 {
		targetW := max(int(float64(bg.Bounds().Dx())*opts.Scale), 1)
		wm = imaging.Resize(wm, targetW, 0, imaging.Lanczos)
	}
	overlay := imaging.Clone(wm)

	pl, err := watermark.Select(watermark.Luminance(bg), watermark.SizeOf(overlay), opts.Padding, opts.Position)
	if err != nil {
		return nil, 0, watermark.Placement{}, fmt.Errorf("select watermark position: %w", err)
	}

	if err := watermark.Blend(bg, overlay, pl, opts.Opacity, opts.Invert); err != nil {
		return nil, 0, watermark.Placement{}, fmt.Errorf("blend watermark: %w", err)
	}

	res, size, err := encode(bg, format)
	if err != nil {
		return nil, 0, watermark.Placement{}, fmt.Errorf("encode result image: %w", err)
	}
	return res, size, pl, nil
}
