package watermark

import (
	"image"
	"image/draw"

	"gonum.org/v1/gonum/stat"
)

// Stat holds luminance statistics for a region.
type Stat struct {
	Mean   float64
	StdDev float64
}

// Luminance converts an image to a single-channel luminance plane using the
// stdlib gray model.
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// RegionStats computes the arithmetic mean and population standard deviation
// of luminance within box. The box is clipped to the image bounds, so a
// rectangle touching an edge never reads out of range. An empty region yields
// a zero Stat.
func RegionStats(lum *image.Gray, box Box) Stat {
	bounds := lum.Bounds()
	x0 := max(box.X0, bounds.Min.X)
	y0 := max(box.Y0, bounds.Min.Y)
	x1 := min(box.X1, bounds.Max.X)
	y1 := min(box.Y1, bounds.Max.Y)
	if x0 >= x1 || y0 >= y1 {
		return Stat{}
	}

	vals := make([]float64, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		row := lum.Pix[(y-bounds.Min.Y)*lum.Stride:]
		for x := x0; x < x1; x++ {
			vals = append(vals, float64(row[x-bounds.Min.X]))
		}
	}

	return Stat{
		Mean:   stat.Mean(vals, nil),
		StdDev: stat.PopStdDev(vals, nil),
	}
}
