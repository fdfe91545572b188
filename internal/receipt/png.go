package receipt

import (
	"image"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 400
	Height = 400

	marginX   = 10
	firstLine = 20 // top of the first text line
	lineStep  = 25
)

// RenderPNG draws the receipt as black left-aligned lines on a white 400x400 canvas.
func RenderPNG(w io.Writer, r Receipt) error {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: img, Src: image.Black, Face: face}

	y := firstLine
	for _, line := range r.Lines() {
		d.Dot = fixed.P(marginX, y+ascent)
		d.DrawString(line)
		y += lineStep
	}

	return png.Encode(w, img)
}
