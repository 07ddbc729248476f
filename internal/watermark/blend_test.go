package watermark

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

const midGray = 128 // 128/255 is just above half intensity

// End-to-end scenario: solid mid-gray background, opaque white overlay,
// scale-independent. All candidate regions have stddev 0, so top-left wins,
// and the bright region auto-inverts the white overlay to black.
func TestBlend_AutoInvertOnBrightRegion(t *testing.T) {
	bg := uniformNRGBA(800, 600, color.NRGBA{R: midGray, G: midGray, B: midGray, A: 255})
	overlay := uniformNRGBA(100, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	pl, err := Select(Luminance(bg), SizeOf(overlay), 0.05, nil)
	require.NoError(t, err)
	require.Equal(t, TopLeft, pl.Pos)
	require.Equal(t, Box{40, 30, 140, 80}, pl.Box)

	require.NoError(t, Blend(bg, overlay, pl, 0.5, false))

	// mask = 255/255*0.5, overlay inverted to black: 0.5*128 + 0.5*0 = 64
	got := bg.NRGBAAt(90, 55)
	require.Equal(t, uint8(64), got.R)
	require.Equal(t, uint8(64), got.G)
	require.Equal(t, uint8(64), got.B)
	require.Equal(t, uint8(255), got.A)

	// outside the rectangle the background is untouched
	require.Equal(t, uint8(midGray), bg.NRGBAAt(400, 300).R)
}

// The invert flag combines with auto-inversion as XOR: on a bright region it
// cancels the automatic inversion and the original colors blend through.
func TestBlend_InvertFlagXOR(t *testing.T) {
	bg := uniformNRGBA(800, 600, color.NRGBA{R: midGray, G: midGray, B: midGray, A: 255})
	overlay := uniformNRGBA(100, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	pl, err := Select(Luminance(bg), SizeOf(overlay), 0.05, nil)
	require.NoError(t, err)

	require.NoError(t, Blend(bg, overlay, pl, 0.5, true))

	// 0.5*128 + 0.5*255 = 191.5 rounds to 192
	require.Equal(t, uint8(192), bg.NRGBAAt(90, 55).R)
}

func TestBlend_NoInvertOnDarkRegion(t *testing.T) {
	bg := uniformNRGBA(400, 300, color.NRGBA{R: 50, G: 50, B: 50, A: 255})
	overlay := uniformNRGBA(100, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	pl, err := Select(Luminance(bg), SizeOf(overlay), 0.05, nil)
	require.NoError(t, err)

	require.NoError(t, Blend(bg, overlay, pl, 0.5, false))

	// dark region: white stays white, 0.5*50 + 0.5*255 = 152.5 -> 153
	require.Equal(t, uint8(153), bg.NRGBAAt(pl.Box.X0+10, pl.Box.Y0+10).R)
}

// A black overlay pixel has zero mask, so it leaves the background alone
// regardless of inversion. The mask comes from the pre-inversion colors.
func TestBlend_MaskFromColorMagnitude(t *testing.T) {
	bg := uniformNRGBA(400, 300, color.NRGBA{R: midGray, G: midGray, B: midGray, A: 255})
	overlay := uniformNRGBA(100, 50, color.NRGBA{A: 255}) // opaque black

	pl, err := Select(Luminance(bg), SizeOf(overlay), 0.05, nil)
	require.NoError(t, err)

	require.NoError(t, Blend(bg, overlay, pl, 1.0, false))

	require.Equal(t, uint8(midGray), bg.NRGBAAt(pl.Box.X0+5, pl.Box.Y0+5).R)
}

func TestBlend_OversizedRectangle(t *testing.T) {
	bg := uniformNRGBA(100, 100, color.NRGBA{A: 255})
	overlay := uniformNRGBA(150, 50, color.NRGBA{R: 255, A: 255})

	pl := Placement{
		Pos: TopLeft,
		Box: Box{0, 0, 150, 50},
	}

	err := Blend(bg, overlay, pl, 0.5, false)
	require.ErrorIs(t, err, ErrOversizedOverlay)
}

// Blending then blending with zero opacity must not disturb the buffer:
// the background keeps its type and untouched channels.
func TestBlend_ZeroOpacityIsNoop(t *testing.T) {
	bg := uniformNRGBA(200, 200, color.NRGBA{R: 90, G: 120, B: 30, A: 255})
	overlay := uniformNRGBA(40, 20, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	pl, err := Select(Luminance(bg), SizeOf(overlay), 0.05, nil)
	require.NoError(t, err)

	before := make([]uint8, len(bg.Pix))
	copy(before, bg.Pix)

	require.NoError(t, Blend(bg, overlay, pl, 0, false))

	require.Equal(t, before, bg.Pix)
}
