package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	// registered decoders
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MAX_WIDTH    = 1200
	JPEG_QUALITY = 80

	CONTENT_TYPE_JPEG = "image/jpeg"
)

type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("image could not be decoded: %v", e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

type ImageEncodeError struct {
	Err error
}

func (e *ImageEncodeError) Error() string {
	return fmt.Sprintf("image could not be encoded: %v", e.Err)
}

func (e *ImageEncodeError) Unwrap() error {
	return e.Err
}

// Normalize decodes an image, caps its width at MAX_WIDTH keeping the aspect ratio and
// re-encodes it as JPEG.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}

	bounds := src.Bounds()
	w, h := TargetSize(bounds.Dx(), bounds.Dy())
	if w == 0 || h == 0 {
		return nil, &ImageDecodeError{Err: fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	// JPEG has no alpha: transparent areas end up white
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEG_QUALITY}); err != nil {
		return nil, &ImageEncodeError{Err: err}
	}
	return buf.Bytes(), nil
}

// TargetSize returns the output dimensions for an input of width x height.
func TargetSize(width, height int) (int, int) {
	if width <= MAX_WIDTH {
		return width, height
	}
	scaled := int(math.Round(float64(height) * float64(MAX_WIDTH) / float64(width)))
	if scaled < 1 {
		scaled = 1
	}
	return MAX_WIDTH, scaled
}
