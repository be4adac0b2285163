package vision

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"math"
	"os"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/kotobatl/kotoba/internal/accel"
)

// recognizer input geometry: every cropped line is scaled to a fixed height
// and batched along a shared padded width.
const (
	lineHeight   = 48
	maxLineWidth = 1024
)

// lineResult is the recognizer's output for one cropped line image.
type lineResult struct {
	text string

	// confidence is only meaningful when hasConfidence is true; callers fall
	// back to the detector-mask proxy otherwise.
	confidence    float64
	hasConfidence bool
}

// recognizer reads text off cropped line images.
type recognizer interface {
	recognize(ctx context.Context, crops []*image.RGBA) ([]lineResult, error)
	close() error
}

// onnxRecognizer is the heavier CTC recognition model plus its character
// set. Index 0 of the charset is the CTC blank.
type onnxRecognizer struct {
	sess    *ort.DynamicAdvancedSession
	charset []rune
}

func newOnnxRecognizer(modelPath, charsetPath string, device accel.Device) (*onnxRecognizer, error) {
	charset, err := loadCharset(charsetPath)
	if err != nil {
		return nil, err
	}

	opts, err := accel.SessionOptions(device, 1)
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	sess, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"images"}, []string{"logits"}, opts)
	if err != nil {
		return nil, fmt.Errorf("create recognizer session: %w", err)
	}
	return &onnxRecognizer{sess: sess, charset: charset}, nil
}

// loadCharset reads one character per line; line i maps to class i+1 because
// class 0 is the CTC blank.
func loadCharset(path string) ([]rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open charset %q: %w", path, err)
	}
	defer f.Close()

	charset := []rune{0} // blank
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		runes := []rune(sc.Text())
		if len(runes) == 0 {
			charset = append(charset, ' ')
			continue
		}
		charset = append(charset, runes[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read charset %q: %w", path, err)
	}
	if len(charset) < 2 {
		return nil, fmt.Errorf("charset %q is empty", path)
	}
	return charset, nil
}

func (r *onnxRecognizer) close() error { return r.sess.Destroy() }

func (r *onnxRecognizer) recognize(ctx context.Context, crops []*image.RGBA) ([]lineResult, error) {
	if len(crops) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Scale each crop to the fixed line height, then pad all of them to the
	// widest width so they share one batch tensor.
	scaled := make([]*image.RGBA, len(crops))
	batchW := 0
	for i, c := range crops {
		s := scaleToHeight(c, lineHeight)
		if s.Bounds().Dx() > batchW {
			batchW = s.Bounds().Dx()
		}
		scaled[i] = s
	}
	if batchW > maxLineWidth {
		batchW = maxLineWidth
	}

	n := len(scaled)
	plane := lineHeight * batchW
	data := make([]float32, n*3*plane)
	for i, s := range scaled {
		padded := padTo(s, batchW, lineHeight)
		crop, _, _ := planarFloats(padded)
		copy(data[i*3*plane:], crop)
	}

	in, err := ort.NewTensor(ort.NewShape(int64(n), 3, lineHeight, int64(batchW)), data)
	if err != nil {
		return nil, fmt.Errorf("recognizer input tensor: %w", err)
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}
	if err := r.sess.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("recognizer run: %w", err)
	}
	out := outputs[0].(*ort.Tensor[float32])
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 3 || shape[0] != int64(n) {
		return nil, fmt.Errorf("recognizer output shape %v, want [%d, T, C]", shape, n)
	}
	steps, classes := int(shape[1]), int(shape[2])
	logits := out.GetData()

	results := make([]lineResult, n)
	for i := 0; i < n; i++ {
		seq := logits[i*steps*classes : (i+1)*steps*classes]
		results[i] = r.ctcDecode(seq, steps, classes)
	}
	return results, nil
}

// ctcDecode greedy-decodes one logit sequence: collapse repeats, drop blanks,
// average the winning probabilities over emitting frames for the confidence.
func (r *onnxRecognizer) ctcDecode(seq []float32, steps, classes int) lineResult {
	var text []rune
	var probSum float64
	var emitted int
	prev := -1

	for t := 0; t < steps; t++ {
		frame := seq[t*classes : (t+1)*classes]
		best, bestProb := argmaxSoftmax(frame)
		if best != 0 && best != prev {
			if best < len(r.charset) {
				text = append(text, r.charset[best])
			}
			probSum += bestProb
			emitted++
		}
		prev = best
	}

	res := lineResult{text: string(text)}
	if emitted > 0 {
		res.confidence = probSum / float64(emitted)
		res.hasConfidence = true
	}
	return res
}

// argmaxSoftmax returns the index of the largest logit and its softmax
// probability.
func argmaxSoftmax(frame []float32) (int, float64) {
	best := 0
	maxV := math.Inf(-1)
	for i, v := range frame {
		if float64(v) > maxV {
			maxV = float64(v)
			best = i
		}
	}
	var sum float64
	for _, v := range frame {
		sum += math.Exp(float64(v) - maxV)
	}
	return best, 1 / sum
}

// scaleToHeight resizes img so its height is exactly h, preserving aspect
// ratio.
func scaleToHeight(img *image.RGBA, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dy() == h {
		return img
	}
	w := int(float64(b.Dx()) * float64(h) / float64(b.Dy()))
	if w < 1 {
		w = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
