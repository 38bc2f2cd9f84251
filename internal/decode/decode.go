// Package decode turns raw fetched bytes into decoded images bounded by a
// caller-supplied target size.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"

	// Formats registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable indicates bytes that no registered format could decode.
var ErrUndecodable = errors.New("undecodable image data")

// Bytes decodes data, downscaling so neither dimension exceeds the given
// bound. Non-positive bounds leave the image at its natural size.
func Bytes(data []byte, maxWidth, maxHeight int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w: %w", ErrUndecodable, err)
	}
	return bound(img, maxWidth, maxHeight), nil
}

// File decodes the image stored at path, downscaling like Bytes.
func File(path string, maxWidth, maxHeight int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", path, ErrUndecodable, err)
	}
	return bound(img, maxWidth, maxHeight), nil
}

// bound downscales img to fit within maxWidth x maxHeight, preserving aspect
// ratio. Images already within the bound are returned untouched; upscaling
// is never performed.
func bound(img image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 || maxHeight <= 0 {
		return img
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= maxWidth && srcH <= maxHeight {
		return img
	}

	// Fit ratio: the tighter of the two axes wins.
	dstW := maxWidth
	dstH := srcH * maxWidth / srcW
	if dstH > maxHeight {
		dstH = maxHeight
		dstW = srcW * maxHeight / srcH
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
