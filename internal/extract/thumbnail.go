package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	// thumbBound is the longest-side pixel bound for generated previews.
	thumbBound = 320
	// thumbQuality is the lossy WebP encode quality.
	thumbQuality = 80
)

// encodeThumbnail scales an image down to fit within thumbBound and
// encodes it as lossy WebP. Smaller sources are not upscaled.
func encodeThumbnail(img image.Image) ([]byte, error) {
	thumb := imaging.Fit(img, thumbBound, thumbBound, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("webp encode: %w", err)
	}
	return buf.Bytes(), nil
}

// placeholderThumbnail produces a neutral gray preview for RAW files
// that expose neither decodable pixels nor an embedded preview, so
// every RAW record still renders something in listings.
func placeholderThumbnail() []byte {
	img := imaging.New(thumbBound, thumbBound, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: thumbQuality}); err != nil {
		return nil
	}
	return buf.Bytes()
}
