package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// Longest edge sent to the recognition vendors
	maxImageEdge = 1024
	jpegQuality  = 80
)

// NormalizeImage re-encodes raw image bytes as JPEG with the longest edge
// capped at 1024px, keeping vendor payload sizes predictable. Images already
// within bounds are still re-encoded so the upload is always JPEG.
func NormalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageEdge || h > maxImageEdge {
		scale := float64(maxImageEdge) / float64(w)
		if h > w {
			scale = float64(maxImageEdge) / float64(h)
		}
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
