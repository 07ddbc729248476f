package imageproc

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

func Resizer(r io.Reader, x, y int, format imaging.Format) (io.Reader, int64, error) {
	img, err := decodeImage(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode baseIMG in Resizer: %w", err)
	}

	resized := imaging.Resize(img, x, y, imaging.Lanczos)

	return encode(resized, format)
}
