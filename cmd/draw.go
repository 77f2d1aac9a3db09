package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/uitree/internal/model"
)

// AnnotateScreenshot draws bounding boxes and ID labels on an image.
// Element bounds are screen-absolute; windowBounds locates the captured
// window so bounds can be converted to image pixels, automatically
// accounting for any scale factor between the window and the screenshot.
func AnnotateScreenshot(img image.Image, elements []model.Element, windowBounds model.BoundingBox) image.Image {
	rgba := imageToRGBA(img)

	imgBounds := img.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if w := windowBounds.Width(); w > 0 {
		scaleX = float64(imgBounds.Dx()) / float64(w)
	}
	if h := windowBounds.Height(); h > 0 {
		scaleY = float64(imgBounds.Dy()) / float64(h)
	}

	boxColor := color.RGBA{R: 255, A: 255}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBg := color.RGBA{A: 200}

	for _, el := range elements {
		x0 := int(float64(el.Bounds.Left-windowBounds.Left) * scaleX)
		y0 := int(float64(el.Bounds.Top-windowBounds.Top) * scaleY)
		x1 := int(float64(el.Bounds.Right-windowBounds.Left) * scaleX)
		y1 := int(float64(el.Bounds.Bottom-windowBounds.Top) * scaleY)
		drawRect(rgba, x0, y0, x1, y1, boxColor)
		drawLabel(rgba, x0+2, y0+12, fmt.Sprintf("[%d]", el.ID), textColor, labelBg)
	}
	return rgba
}

func imageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// drawRect draws a 1px rectangle outline, clipped to the image.
func drawRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y0, c)
		setPixel(img, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x0, y, c)
		setPixel(img, x1, y, c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel renders small text with a filled background for legibility.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()

	bgRect := image.Rect(x-1, y-face.Ascent-1, x+width+1, y+face.Descent+1)
	draw.Draw(img, bgRect.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
