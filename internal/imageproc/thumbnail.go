package imageproc

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

func Thumbnailer(r io.Reader, x, y int, format imaging.Format) (io.Reader, int64, error) {
	img, err := decodeImage(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode baseIMG in Thumbnailer: %w", err)
	}

	thumb := imaging.Thumbnail(img, x, y, imaging.Lanczos)

	return encode(thumb, format)
}
