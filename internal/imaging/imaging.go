// Package imaging persists captured screenshot payloads, converting the
// image container when the target file extension asks for a different one.
// The declared format is a hint: several instruments answer a PNG query
// while their profile says BMP, so the payload is sniffed before deciding
// whether conversion is possible.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/dmawson/scopeshot/internal/profile"
)

const jpegQuality = 95

// Detect sniffs the payload's real container from its magic bytes.
func Detect(data []byte) (profile.Format, bool) {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return profile.PNG, true
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return profile.BMP, true
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return profile.JPG, true
	}
	return "", false
}

// Save writes the payload to path, re-encoding when the target extension
// names a different container than the payload actually holds. Payloads
// that do not decode are written verbatim.
func Save(data []byte, declared profile.Format, path string) error {
	target, ok := formatForExt(filepath.Ext(path))
	if !ok {
		return writeFile(path, data)
	}

	actual, sniffed := Detect(data)
	if !sniffed {
		actual = declared
	}
	if actual == target {
		return writeFile(path, data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not decodable; the declared format was wrong too. Keep the bytes.
		return writeFile(path, data)
	}

	var buf bytes.Buffer
	switch target {
	case profile.PNG:
		err = png.Encode(&buf, img)
	case profile.BMP:
		err = bmp.Encode(&buf, img)
	case profile.JPG:
		// JPEG has no alpha; flatten onto a white background first.
		err = jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", target, err)
	}
	return writeFile(path, buf.Bytes())
}

func formatForExt(ext string) (profile.Format, bool) {
	switch strings.ToLower(ext) {
	case ".png":
		return profile.PNG, true
	case ".bmp":
		return profile.BMP, true
	case ".jpg", ".jpeg":
		return profile.JPG, true
	}
	return "", false
}

func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
