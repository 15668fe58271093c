package wpmigrate

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const jpegQuality = 80

// NormalizeImage downscales an image to maxWidth when it is wider,
// re-encoding it as JPEG. It returns the bytes to store, the extension the
// stored file should use ("" to keep the original), and whether anything
// changed. Undecodable inputs are returned untouched so the original bytes
// still land in storage.
func NormalizeImage(data []byte, maxWidth int) ([]byte, string, bool) {
	if maxWidth <= 0 {
		return data, "", false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, "", false
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return data, "", false
	}

	newH := h * maxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data, "", false
	}
	return buf.Bytes(), "jpg", true
}
