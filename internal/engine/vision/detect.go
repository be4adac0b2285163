package vision

import (
	"context"
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/kotobatl/kotoba/internal/accel"
)

// maskThreshold binarizes detector activations; detectorStride is the
// spatial divisor the segmentation model requires on its input dimensions.
const (
	maskThreshold  = 0.3
	detectorStride = 32
)

// mask is a single-channel activation map aligned with the working image.
type mask struct {
	data []float32
	w, h int
}

func (m *mask) at(x, y int) float32 { return m.data[y*m.w+x] }

// meanInside averages activations inside r, for the confidence proxy used
// when the recognizer does not score.
func (m *mask) meanInside(r image.Rectangle) float64 {
	r = r.Intersect(image.Rect(0, 0, m.w, m.h))
	if r.Empty() {
		return 0
	}
	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sum += float64(m.at(x, y))
		}
	}
	v := sum / float64(r.Dx()*r.Dy())
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v
}

// detector locates text in the working image as a segmentation mask.
type detector interface {
	detect(ctx context.Context, img *image.RGBA) (*mask, error)
	close() error
}

// onnxDetector is the lightweight quantized segmentation model.
type onnxDetector struct {
	sess *ort.DynamicAdvancedSession
}

func newOnnxDetector(modelPath string, device accel.Device) (*onnxDetector, error) {
	opts, err := accel.SessionOptions(device, 1)
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	sess, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"images"}, []string{"mask"}, opts)
	if err != nil {
		return nil, fmt.Errorf("create detector session: %w", err)
	}
	return &onnxDetector{sess: sess}, nil
}

func (d *onnxDetector) close() error { return d.sess.Destroy() }

func (d *onnxDetector) detect(ctx context.Context, img *image.RGBA) (*mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	padW := roundUp(b.Dx(), detectorStride)
	padH := roundUp(b.Dy(), detectorStride)
	padded := padTo(img, padW, padH)

	data, w, h := planarFloats(padded)
	in, err := ort.NewTensor(ort.NewShape(1, 3, int64(h), int64(w)), data)
	if err != nil {
		return nil, fmt.Errorf("detector input tensor: %w", err)
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}
	if err := d.sess.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("detector run: %w", err)
	}
	out := outputs[0].(*ort.Tensor[float32])
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 4 || shape[2] != int64(h) || shape[3] != int64(w) {
		return nil, fmt.Errorf("detector output shape %v does not match input %dx%d", shape, h, w)
	}

	// Trim the padding region so the mask aligns with the working image.
	full := out.GetData()
	m := &mask{data: make([]float32, b.Dx()*b.Dy()), w: b.Dx(), h: b.Dy()}
	for y := 0; y < b.Dy(); y++ {
		copy(m.data[y*b.Dx():(y+1)*b.Dx()], full[y*w:y*w+b.Dx()])
	}
	return m, nil
}

// component is one connected region of the thresholded mask, in working-image
// coordinates.
type component struct {
	rect           image.Rectangle
	meanActivation float64
}

// extractComponents finds 4-connected regions of the mask above
// maskThreshold. Flood fill with an explicit stack; masks are at most
// 2048x2048 so the visit bitmap is small.
func extractComponents(m *mask) []component {
	visited := make([]bool, len(m.data))
	var comps []component

	type pt struct{ x, y int }
	stack := make([]pt, 0, 1024)

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			idx := y*m.w + x
			if visited[idx] || m.data[idx] < maskThreshold {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			var sum float64
			var count int

			visited[idx] = true
			stack = append(stack[:0], pt{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				sum += float64(m.at(p.x, p.y))
				count++
				if p.x < minX {
					minX = p.x
				}
				if p.y < minY {
					minY = p.y
				}
				if p.x > maxX {
					maxX = p.x
				}
				if p.y > maxY {
					maxY = p.y
				}

				for _, n := range [4]pt{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
					if n.x < 0 || n.y < 0 || n.x >= m.w || n.y >= m.h {
						continue
					}
					ni := n.y*m.w + n.x
					if visited[ni] || m.data[ni] < maskThreshold {
						continue
					}
					visited[ni] = true
					stack = append(stack, n)
				}
			}

			comps = append(comps, component{
				rect:           image.Rect(minX, minY, maxX+1, maxY+1),
				meanActivation: sum / float64(count),
			})
		}
	}
	return comps
}
