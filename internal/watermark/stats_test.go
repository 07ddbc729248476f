package watermark

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestRegionStats_Uniform(t *testing.T) {
	lum := uniformGray(100, 100, 128)

	st := RegionStats(lum, Box{10, 10, 60, 40})

	require.Equal(t, 128.0, st.Mean)
	require.Equal(t, 0.0, st.StdDev)
}

func TestRegionStats_TwoValues(t *testing.T) {
	lum := uniformGray(10, 10, 0)
	// right half white
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			lum.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	st := RegionStats(lum, Box{0, 0, 10, 10})

	require.InDelta(t, 127.5, st.Mean, 1e-9)
	require.InDelta(t, 127.5, st.StdDev, 1e-9) // population stddev, not sample
}

func TestRegionStats_ClipsToBounds(t *testing.T) {
	lum := uniformGray(20, 20, 77)

	st := RegionStats(lum, Box{15, 15, 40, 40}) // extends past the edge

	require.Equal(t, 77.0, st.Mean)
	require.Equal(t, 0.0, st.StdDev)
}

func TestRegionStats_EmptyRegion(t *testing.T) {
	lum := uniformGray(20, 20, 77)

	st := RegionStats(lum, Box{30, 30, 40, 40}) // fully outside

	require.Equal(t, Stat{}, st)
}

func TestLuminance_GrayInput(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	lum := Luminance(src)

	require.Equal(t, uint8(128), lum.GrayAt(2, 2).Y)
}
