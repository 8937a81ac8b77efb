// Package textshot renders screenshots for instruments with a text-only
// "virtual display": SCPI devices that cannot dump a framebuffer but
// answer *NLINES? and *LTEXT? <n> with the lines currently shown. The
// lines are drawn onto a bitmap so the rest of the application can treat
// the result like any other screenshot.
package textshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Querier is the minimal device surface needed here.
type Querier interface {
	Query(cmd string) (string, error)
}

// ClassName is the profile class that routes a device to this renderer
// instead of the profile-table dispatcher.
const ClassName = "Virtual Display"

var (
	background = color.RGBA{R: 73, G: 109, B: 137, A: 255}
	foreground = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

const (
	marginX    = 10
	marginY    = 10
	lineHeight = 16 // basicfont.Face7x13 plus spacing
	charWidth  = 7
)

// Capture reads the virtual display line by line and renders it to a PNG.
func Capture(dev Querier) ([]byte, error) {
	reply, err := dev.Query("*NLINES?")
	if err != nil {
		return nil, fmt.Errorf("query line count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("bad line count %q", reply)
	}

	lines := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		line, err := dev.Query(fmt.Sprintf("*LTEXT? %d", i))
		if err != nil {
			return nil, fmt.Errorf("query line %d: %w", i, err)
		}
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}

	return Render(lines)
}

// Render draws text lines onto an image and encodes it as PNG.
func Render(lines []string) ([]byte, error) {
	maxLen := 1
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}

	width := maxLen*charWidth + 2*marginX
	height := len(lines)*lineHeight + 2*marginY
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, background)
		}
	}

	face := basicfont.Face7x13
	for i, line := range lines {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(foreground),
			Face: face,
			Dot: fixed.P(
				marginX,
				marginY+i*lineHeight+face.Ascent,
			),
		}
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
