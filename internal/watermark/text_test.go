package watermark

import (
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func testFont(t *testing.T) *opentype.Font {
	t.Helper()

	fnt, err := opentype.Parse(goregular.TTF)
	require.NoError(t, err)
	return fnt
}

func TestFitFace_WithinOneIncrement(t *testing.T) {
	fnt := testFont(t)
	const bgWidth = 800
	text := "sample watermark"

	prevSize := 0
	for _, frac := range []float64{0.1, 0.2, 0.5} {
		t.Run(fmt.Sprintf("frac=%.1f", frac), func(t *testing.T) {
			target := int(frac * bgWidth)

			face, size, err := FitFace(fnt, text, target)
			require.NoError(t, err)
			require.GreaterOrEqual(t, size, 1)

			width := font.MeasureString(face, text).Ceil()
			if size > 1 {
				require.LessOrEqual(t, width, target)

				// one increment up must overshoot, or the search would
				// have kept growing
				bigger, err := newFace(fnt, size+1)
				require.NoError(t, err)
				require.Greater(t, font.MeasureString(bigger, text).Ceil(), target)
			}

			// wider target never yields a smaller font
			require.GreaterOrEqual(t, size, prevSize)
			prevSize = size
		})
	}
}

func TestFitFace_EmptyText(t *testing.T) {
	_, _, err := FitFace(testFont(t), "", 100)
	require.Error(t, err)
}

func TestRenderText_FillByContrast(t *testing.T) {
	fnt := testFont(t)
	bg := Size{W: 400, H: 200}

	tests := []struct {
		name   string
		mean   float64
		darkOK func(r uint8) bool
	}{
		{name: "bright region gets dark fill", mean: 200, darkOK: func(r uint8) bool { return r < 50 }},
		{name: "dark region gets light fill", mean: 40, darkOK: func(r uint8) bool { return r > 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, err := RenderText(fnt, "mark", 0.3, bg, Stat{Mean: tt.mean}, 0.8, 10)
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, bg.W, bg.H), layer.Bounds())

			found := false
			for i := 0; i < len(layer.Pix); i += 4 {
				if layer.Pix[i+3] > 128 { // solidly drawn glyph pixel
					found = true
					require.True(t, tt.darkOK(layer.Pix[i]))
				}
			}
			require.True(t, found, "expected rendered glyph pixels in layer")
		})
	}
}

func TestRenderText_OpacityGoesToAlpha(t *testing.T) {
	layer, err := RenderText(testFont(t), "mark", 0.3, Size{W: 400, H: 200}, Stat{Mean: 40}, 0.5, 10)
	require.NoError(t, err)

	// anti-aliased coverage never exceeds the requested opacity
	maxAlpha := uint8(0)
	for i := 3; i < len(layer.Pix); i += 4 {
		if layer.Pix[i] > maxAlpha {
			maxAlpha = layer.Pix[i]
		}
	}
	require.Greater(t, maxAlpha, uint8(0))
	require.LessOrEqual(t, maxAlpha, uint8(128))
}

func TestTextExtent(t *testing.T) {
	ext, err := TextExtent(testFont(t), "sample watermark", 0.2, Size{W: 800, H: 600})
	require.NoError(t, err)

	require.Greater(t, ext.W, 0)
	require.Greater(t, ext.H, 0)
	require.LessOrEqual(t, ext.W, 160)
}

func TestCopyrightPrefix(t *testing.T) {
	taken := time.Date(2019, 7, 14, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "© 2019", CopyrightPrefix(&taken))
	require.Equal(t, fmt.Sprintf("© %d", time.Now().Year()), CopyrightPrefix(nil))
}
