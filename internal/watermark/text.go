package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var faceOptions = opentype.FaceOptions{DPI: 72, Hinting: font.HintingFull}

// FitFace finds the largest font size whose rendered text width does not
// overshoot targetWidth, by growing the size one point at a time from 1 and
// stepping back once on overshoot. Glyph width is monotonically
// non-decreasing in font size, so the linear search terminates after
// O(final size) iterations.
func FitFace(fnt *opentype.Font, text string, targetWidth int) (font.Face, int, error) {
	if text == "" {
		return nil, 0, errors.New("empty watermark text")
	}

	size := 1
	face, err := newFace(fnt, size)
	if err != nil {
		return nil, 0, err
	}
	for font.MeasureString(face, text).Ceil() < targetWidth {
		size++
		if face, err = newFace(fnt, size); err != nil {
			return nil, 0, err
		}
	}
	if size > 1 && font.MeasureString(face, text).Ceil() > targetWidth {
		size--
		if face, err = newFace(fnt, size); err != nil {
			return nil, 0, err
		}
	}
	return face, size, nil
}

func newFace(fnt *opentype.Font, size int) (font.Face, error) {
	opts := faceOptions
	opts.Size = float64(size)
	return opentype.NewFace(fnt, &opts)
}

// RenderText rasterizes text into a transparent layer of the full background
// size, with the glyphs at (offset, offset) from the top-left corner. The
// font size is fitted so the text spans widthFrac of the background width.
// The fill is dark when the target region is bright (mean at or above half
// intensity) and light otherwise; opacity goes into the fill's alpha.
//
// The returned layer composites onto the background with a straight alpha
// composite, not the Blend mask path.
func RenderText(fnt *opentype.Font, text string, widthFrac float64, bg Size, st Stat, opacity float64, offset int) (*image.NRGBA, error) {
	face, _, err := FitFace(fnt, text, int(widthFrac*float64(bg.W)))
	if err != nil {
		return nil, fmt.Errorf("fit font size: %w", err)
	}

	alpha := uint8(math.Round(opacity * maxIntensity))
	fill := color.NRGBA{R: 255, G: 255, B: 255, A: alpha}
	if st.Mean/maxIntensity >= 0.5 {
		fill = color.NRGBA{A: alpha}
	}

	layer := image.NewNRGBA(image.Rect(0, 0, bg.W, bg.H))
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(fill),
		Face: face,
		// Dot is the baseline origin, so drop it below the offset by the
		// font ascent to keep the glyph tops at the offset.
		Dot: fixed.P(offset, offset+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	return layer, nil
}

// TextExtent measures the fitted text so callers can score the region it will
// cover before rendering.
func TextExtent(fnt *opentype.Font, text string, widthFrac float64, bg Size) (Size, error) {
	face, _, err := FitFace(fnt, text, int(widthFrac*float64(bg.W)))
	if err != nil {
		return Size{}, err
	}
	m := face.Metrics()
	return Size{
		W: font.MeasureString(face, text).Ceil(),
		H: m.Ascent.Ceil() + m.Descent.Ceil(),
	}, nil
}

// CopyrightPrefix builds the copyright fragment for text watermarks. The year
// comes from the capture time when the caller extracted one from image
// metadata, otherwise from the current date.
func CopyrightPrefix(taken *time.Time) string {
	t := time.Now()
	if taken != nil {
		t = *taken
	}
	return fmt.Sprintf("© %s", t.Format("2006"))
}
