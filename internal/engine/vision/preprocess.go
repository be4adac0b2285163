package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// maxImageBytes is the ceiling on encoded request payloads, checked
	// before any decode is attempted.
	maxImageBytes = 10 << 20

	// maxDimension caps the longest side of the working image. Larger
	// images are resized with aspect ratio preserved and every coordinate
	// is mapped back to the original system afterwards.
	maxDimension = 2048
)

// frame is the preprocessed working image plus the bookkeeping needed to map
// detector coordinates back onto the original image.
type frame struct {
	img *image.RGBA

	// origW and origH are the dimensions of the image as the client sent it.
	origW, origH int

	// scale is original/working; 1.0 when no resize happened.
	scale float64
}

// decodeFrame decodes image bytes, converts to RGB, and resizes so the
// longest side fits maxDimension. It never inspects payloads over the size
// ceiling.
func decodeFrame(data []byte) (*frame, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	origW, origH := b.Dx(), b.Dy()
	if origW == 0 || origH == 0 {
		return nil, fmt.Errorf("image has zero dimension %dx%d", origW, origH)
	}

	longest := origW
	if origH > longest {
		longest = origH
	}

	scale := 1.0
	workW, workH := origW, origH
	if longest > maxDimension {
		scale = float64(longest) / float64(maxDimension)
		workW = int(float64(origW) / scale)
		workH = int(float64(origH) / scale)
		if workW < 1 {
			workW = 1
		}
		if workH < 1 {
			workH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, workW, workH))
	if scale == 1.0 {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}

	return &frame{img: dst, origW: origW, origH: origH, scale: scale}, nil
}

// toOriginal maps a working-image coordinate back to the original system,
// clamped to the original bounds.
func (f *frame) toOriginal(x, y int) (int, int) {
	ox := int(float64(x) * f.scale)
	oy := int(float64(y) * f.scale)
	if ox < 0 {
		ox = 0
	}
	if oy < 0 {
		oy = 0
	}
	if ox > f.origW {
		ox = f.origW
	}
	if oy > f.origH {
		oy = f.origH
	}
	return ox, oy
}

// crop extracts a sub-image copy of the working image.
func (f *frame) crop(r image.Rectangle) *image.RGBA {
	r = r.Intersect(f.img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), f.img, r.Min, draw.Src)
	return out
}

// planarFloats converts img to a CHW float32 tensor normalized to [0,1].
func planarFloats(img *image.RGBA) ([]float32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float32, 3*w*h)
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			out[i] = float32(c.R) / 255
			out[plane+i] = float32(c.G) / 255
			out[2*plane+i] = float32(c.B) / 255
		}
	}
	return out, w, h
}

// padTo returns a copy of img grown to exactly w×h, padding with black. The
// detector requires dimensions divisible by its stride; padding keeps the
// content coordinates unchanged.
func padTo(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(out, b.Sub(b.Min), img, b.Min, draw.Src)
	return out
}

// roundUp rounds n up to the next multiple of m.
func roundUp(n, m int) int {
	if r := n % m; r != 0 {
		return n + m - r
	}
	return n
}
