package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pixelmark/pixelmark/internal/watermark"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// TextOpts carries the normalized text-watermark parameters. Empty FontPath
// selects the embedded Go Regular face.
type TextOpts struct {
	Text      string
	Copyright bool
	Scale     float64
	Opacity   float64
	Padding   float64
	FontPath  string
}

// TextMarker renders a text watermark near the top-left corner, sized to
// Scale of the background width, with the fill color picked against the
// local background luminance. In copyright mode the text is prefixed with a
// copyright symbol and the capture year from EXIF (falling back to today).
//
// A font resource that cannot be loaded is a soft failure: the original
// bytes come back unmodified with applied=false, and the caller decides how
// loudly to report the skipped watermark.
func TextMarker(b io.Reader, opts TextOpts, format imaging.Format) (out io.Reader, size int64, applied bool, err error) {
	if b == nil {
		return nil, 0, false, errors.New("nil-reader baseIMG provided")
	}

	data, err := io.ReadAll(b)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read base image: %w", err)
	}

	src, err := decodeBytes(data)
	if err != nil {
		return nil, 0, false, fmt.Errorf("decode base image: %w", err)
	}

	fnt, err := loadFont(opts.FontPath)
	if err != nil {
		return bytes.NewReader(data), int64(len(data)), false, nil
	}

	text := opts.Text
	if opts.Copyright {
		text = strings.TrimSpace(watermark.CopyrightPrefix(captureTime(data)) + " " + text)
	}

	bg := imaging.Clone(src)
	bgSize := watermark.SizeOf(bg)
	offset := int(opts.Padding * float64(bgSize.W))

	ext, err := watermark.TextExtent(fnt, text, opts.Scale, bgSize)
	if err != nil {
		return nil, 0, false, fmt.Errorf("measure watermark text: %w", err)
	}
	region := watermark.Box{X0: offset, Y0: offset, X1: offset + ext.W, Y1: offset + ext.H}
	st := watermark.RegionStats(watermark.Luminance(bg), region)

	layer, err := watermark.RenderText(fnt, text, opts.Scale, bgSize, st, opts.Opacity, offset)
	if err != nil {
		return nil, 0, false, fmt.Errorf("render watermark text: %w", err)
	}

	// текст кладется простым альфа-композитом, без маски Blend
	result := imaging.Overlay(bg, layer, image.Pt(0, 0), 1.0)

	res, resSize, err := encode(result, format)
	if err != nil {
		return nil, 0, false, fmt.Errorf("encode result image: %w", err)
	}
	return res, resSize, true, nil
}

func loadFont(path string) (*opentype.Font, error) {
	if path == "" {
		return opentype.Parse(goregular.TTF)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %q: %w", path, err)
	}
	return opentype.Parse(data)
}
