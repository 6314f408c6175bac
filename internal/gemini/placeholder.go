package gemini

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const (
	placeholderWidth  = 1200
	placeholderHeight = 630
)

// PlaceholderImage synthesizes a simple branded card used when image
// generation is unavailable after retries. Publishing always needs some
// image, so this path must never fail or return an empty slice.
func PlaceholderImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))

	background := color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	band := color.RGBA{R: 0x0f, G: 0x34, B: 0x60, A: 0xff}
	accent := color.RGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff}

	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			switch {
			case y >= 260 && y < 370:
				img.SetRGBA(x, y, band)
			case y >= 370 && y < 380:
				img.SetRGBA(x, y, accent)
			default:
				img.SetRGBA(x, y, background)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA image cannot fail in practice;
		// return a 1x1 PNG seed just in case so the field is never empty.
		return minimalPNG()
	}
	return buf.Bytes()
}

func minimalPNG() []byte {
	var buf bytes.Buffer
	tiny := image.NewRGBA(image.Rect(0, 0, 1, 1))
	tiny.SetRGBA(0, 0, color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff})
	_ = png.Encode(&buf, tiny)
	return buf.Bytes()
}
