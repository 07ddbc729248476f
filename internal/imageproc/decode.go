package imageproc

import (
	"bytes"
	"errors"
	"image"
	"io"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// IsWebP reports whether data starts with a RIFF/WEBP container header.
// imaging has no webp codec, so webp input takes a separate decode path.
func IsWebP(data []byte) bool {
	return len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// SniffFormat reads the image header without decoding pixel data and returns
// the registered format name ("jpeg", "png", "gif").
func SniffFormat(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

func decodeBytes(data []byte) (image.Image, error) {
	if IsWebP(data) {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data))
}

func decodeImage(r io.Reader) (image.Image, error) {
	if r == nil {
		return nil, errors.New("nil-reader provided")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data)
}

// captureTime extracts the capture timestamp from EXIF metadata. Absent or
// broken metadata is not an error - the caller falls back to the current date.
func captureTime(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	t, err := x.DateTime() // DateTimeOriginal with DateTime fallback
	if err != nil {
		return nil
	}
	return &t
}

func encode(img image.Image, format imaging.Format) (io.Reader, int64, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, 0, err
	}
	return &buf, int64(buf.Len()), nil
}
