package charts

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Size is a figure size in inches.
type Size struct {
	W, H float64
}

// Pixels returns the raster size at dpi.
func (s Size) Pixels(dpi float64) (int, int) {
	return int(math.Round(s.W * dpi)), int(math.Round(s.H * dpi))
}

// figure is a white canvas that panels are tiled onto.
type figure struct {
	img *image.RGBA
	dpi float64
}

func newFigure(s Size, dpi float64) *figure {
	w, h := s.Pixels(dpi)
	return &figure{img: blank(w, h), dpi: dpi}
}

// px converts inches to pixels.
func (f *figure) px(in float64) int { return int(math.Round(in * f.dpi)) }

func (f *figure) width() int  { return f.img.Bounds().Dx() }
func (f *figure) height() int { return f.img.Bounds().Dy() }

// place copies img with its top-left corner at (x, y).
func (f *figure) place(img image.Image, x, y int) {
	b := img.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(f.img, r, img, b.Min, draw.Src)
}

// title writes text centred horizontally with its baseline at y.
func (f *figure) title(text string, sizePt float64, y int) error {
	face, err := regularFace(sizePt, f.dpi)
	if err != nil {
		return err
	}
	defer face.Close()
	d := &font.Drawer{Dst: f.img, Src: image.NewUniform(rgba(textColor)), Face: face}
	tw := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((f.width()-tw)/2, y)
	d.DrawString(text)
	return nil
}

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

func regularFace(sizePt, dpi float64) (font.Face, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	if regularErr != nil {
		return nil, fmt.Errorf("parse font: %w", regularErr)
	}
	return opentype.NewFace(regularFont, &opentype.FaceOptions{Size: sizePt, DPI: dpi, Hinting: font.HintingFull})
}
