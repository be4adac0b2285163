package nmt

import (
	"context"
	"fmt"
	"math"
	"sort"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/kotobatl/kotoba/internal/accel"
)

// genParams are the beam-search parameters for one generation call.
type genParams struct {
	BeamSize          int
	MaxLength         int
	RepetitionPenalty float64
	NoRepeatNGram     int
	LengthPenalty     float64
}

// generator runs sequence-to-sequence generation. Implementations are safe
// for concurrent use; the engine's worker pool bounds how many calls execute
// at once.
type generator interface {
	// generate decodes from inputIDs with the target-language tag forced as
	// the first generated token. It returns the generated ids (tags and
	// specials included) and a confidence proxy in [0,1].
	generate(ctx context.Context, inputIDs []int64, forcedBOS int64, p genParams) ([]int64, float64, error)

	close() error
}

// onnxGenerator drives a quantized encoder/decoder ONNX pair. The encoder
// runs once per request; the decoder is re-run over the full target prefix
// each step, which trades latency for not carrying mutable KV-cache state
// between calls.
type onnxGenerator struct {
	encoder *ort.DynamicAdvancedSession
	decoder *ort.DynamicAdvancedSession

	// decoderStartID begins every target sequence; eosID terminates it.
	decoderStartID int64
	eosID          int64
}

// encoder/decoder tensor names as exported by the conversion pipeline.
var (
	encoderInputs  = []string{"input_ids", "attention_mask"}
	encoderOutputs = []string{"last_hidden_state"}
	decoderInputs  = []string{"input_ids", "encoder_attention_mask", "encoder_hidden_states"}
	decoderOutputs = []string{"logits"}
)

// newOnnxGenerator creates sessions for the encoder and decoder models with
// intra-op parallelism pinned to 1; concurrency comes from the worker pool,
// not from each session fanning out threads.
func newOnnxGenerator(encoderPath, decoderPath string, device accel.Device, eosID int64) (*onnxGenerator, error) {
	opts, err := accel.SessionOptions(device, 1)
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	enc, err := ort.NewDynamicAdvancedSession(encoderPath, encoderInputs, encoderOutputs, opts)
	if err != nil {
		return nil, fmt.Errorf("create encoder session: %w", err)
	}
	dec, err := ort.NewDynamicAdvancedSession(decoderPath, decoderInputs, decoderOutputs, opts)
	if err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("create decoder session: %w", err)
	}
	return &onnxGenerator{
		encoder:        enc,
		decoder:        dec,
		decoderStartID: eosID,
		eosID:          eosID,
	}, nil
}

func (g *onnxGenerator) close() error {
	var first error
	if err := g.decoder.Destroy(); err != nil {
		first = err
	}
	if err := g.encoder.Destroy(); err != nil && first == nil {
		first = err
	}
	return first
}

// hiddenStates is one encoder pass: the flattened [1, n, d] activations plus
// the dimensions needed to rebuild the tensor per decoder step.
type hiddenStates struct {
	data   []float32
	srcLen int64
	dim    int64
}

func (g *onnxGenerator) encode(inputIDs []int64) (*hiddenStates, error) {
	n := int64(len(inputIDs))
	idT, err := ort.NewTensor(ort.NewShape(1, n), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer idT.Destroy()

	mask := make([]int64, n)
	for i := range mask {
		mask[i] = 1
	}
	maskT, err := ort.NewTensor(ort.NewShape(1, n), mask)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskT.Destroy()

	outputs := []ort.Value{nil}
	if err := g.encoder.Run([]ort.Value{idT, maskT}, outputs); err != nil {
		return nil, fmt.Errorf("encoder run: %w", err)
	}
	out := outputs[0].(*ort.Tensor[float32])
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("encoder output rank %d, want 3", len(shape))
	}
	data := make([]float32, len(out.GetData()))
	copy(data, out.GetData())
	return &hiddenStates{data: data, srcLen: shape[1], dim: shape[2]}, nil
}

// step runs the decoder over the full target prefix and returns the logits of
// the final position.
func (g *onnxGenerator) step(hs *hiddenStates, prefix []int64) ([]float32, error) {
	t := int64(len(prefix))
	idT, err := ort.NewTensor(ort.NewShape(1, t), prefix)
	if err != nil {
		return nil, fmt.Errorf("decoder input tensor: %w", err)
	}
	defer idT.Destroy()

	mask := make([]int64, hs.srcLen)
	for i := range mask {
		mask[i] = 1
	}
	maskT, err := ort.NewTensor(ort.NewShape(1, hs.srcLen), mask)
	if err != nil {
		return nil, fmt.Errorf("decoder mask tensor: %w", err)
	}
	defer maskT.Destroy()

	hsT, err := ort.NewTensor(ort.NewShape(1, hs.srcLen, hs.dim), hs.data)
	if err != nil {
		return nil, fmt.Errorf("hidden-state tensor: %w", err)
	}
	defer hsT.Destroy()

	outputs := []ort.Value{nil}
	if err := g.decoder.Run([]ort.Value{idT, maskT, hsT}, outputs); err != nil {
		return nil, fmt.Errorf("decoder run: %w", err)
	}
	out := outputs[0].(*ort.Tensor[float32])
	defer out.Destroy()

	shape := out.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("decoder output rank %d, want 3", len(shape))
	}
	vocab := int(shape[2])
	all := out.GetData()
	last := make([]float32, vocab)
	copy(last, all[(int(shape[1])-1)*vocab:])
	return last, nil
}

type hypothesis struct {
	ids  []int64
	logp float64
	done bool
}

func (h hypothesis) score(lengthPenalty float64) float64 {
	// Generated length excludes the two forced start tokens.
	n := float64(len(h.ids) - 2)
	if n < 1 {
		n = 1
	}
	return h.logp / math.Pow(n, lengthPenalty)
}

func (g *onnxGenerator) generate(ctx context.Context, inputIDs []int64, forcedBOS int64, p genParams) ([]int64, float64, error) {
	hs, err := g.encode(inputIDs)
	if err != nil {
		return nil, 0, err
	}

	beams := []hypothesis{{ids: []int64{g.decoderStartID, forcedBOS}}}
	var finished []hypothesis

	for step := 0; step < p.MaxLength; step++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		var candidates []hypothesis
		for _, b := range beams {
			logits, err := g.step(hs, b.ids)
			if err != nil {
				return nil, 0, err
			}
			applyRepetitionPenalty(logits, b.ids, p.RepetitionPenalty)
			banRepeatNGrams(logits, b.ids, p.NoRepeatNGram)
			logProbs := logSoftmax(logits)

			for _, c := range topK(logProbs, 2*p.BeamSize) {
				next := hypothesis{
					ids:  append(append([]int64(nil), b.ids...), int64(c.index)),
					logp: b.logp + c.logProb,
					done: int64(c.index) == g.eosID,
				}
				candidates = append(candidates, next)
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].score(p.LengthPenalty) > candidates[j].score(p.LengthPenalty)
		})

		beams = beams[:0]
		for _, c := range candidates {
			if c.done {
				finished = append(finished, c)
				continue
			}
			beams = append(beams, c)
			if len(beams) == p.BeamSize {
				break
			}
		}
		if len(finished) >= p.BeamSize || len(beams) == 0 {
			break
		}
	}

	best, ok := bestHypothesis(finished, p.LengthPenalty)
	if !ok {
		// No beam reached EOS within the limit; fall back to the best live
		// prefix rather than failing the request.
		best, ok = bestHypothesis(beams, p.LengthPenalty)
		if !ok {
			return nil, 0, fmt.Errorf("beam search produced no hypotheses")
		}
	}

	n := float64(len(best.ids) - 2)
	if n < 1 {
		n = 1
	}
	conf := math.Exp(best.logp / n)
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return best.ids, conf, nil
}

func bestHypothesis(hs []hypothesis, lengthPenalty float64) (hypothesis, bool) {
	if len(hs) == 0 {
		return hypothesis{}, false
	}
	best := hs[0]
	for _, h := range hs[1:] {
		if h.score(lengthPenalty) > best.score(lengthPenalty) {
			best = h
		}
	}
	return best, true
}

// applyRepetitionPenalty dampens every token that already appears in the
// prefix, suppressing degenerate loops.
func applyRepetitionPenalty(logits []float32, prefix []int64, penalty float64) {
	if penalty <= 1 {
		return
	}
	for _, id := range prefix {
		if id < 0 || int(id) >= len(logits) {
			continue
		}
		v := float64(logits[id])
		if v > 0 {
			v /= penalty
		} else {
			v *= penalty
		}
		logits[id] = float32(v)
	}
}

// banRepeatNGrams forbids any token that would complete an n-gram already
// present in the prefix.
func banRepeatNGrams(logits []float32, prefix []int64, n int) {
	if n <= 0 || len(prefix) < n {
		return
	}
	tail := prefix[len(prefix)-(n-1):]
	for start := 0; start+n <= len(prefix); start++ {
		match := true
		for j := 0; j < n-1; j++ {
			if prefix[start+j] != tail[j] {
				match = false
				break
			}
		}
		if match {
			banned := prefix[start+n-1]
			if banned >= 0 && int(banned) < len(logits) {
				logits[banned] = float32(math.Inf(-1))
			}
		}
	}
}

func logSoftmax(logits []float32) []float64 {
	maxV := math.Inf(-1)
	for _, v := range logits {
		if float64(v) > maxV {
			maxV = float64(v)
		}
	}
	var sum float64
	for _, v := range logits {
		sum += math.Exp(float64(v) - maxV)
	}
	logSum := maxV + math.Log(sum)

	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = float64(v) - logSum
	}
	return out
}

type scored struct {
	index   int
	logProb float64
}

// topK returns the k highest log-probabilities with their token indices.
func topK(logProbs []float64, k int) []scored {
	if k > len(logProbs) {
		k = len(logProbs)
	}
	// Partial selection over a 250k vocabulary: keep a small sorted slice.
	best := make([]scored, 0, k)
	for i, lp := range logProbs {
		if len(best) == k && lp <= best[k-1].logProb {
			continue
		}
		pos := sort.Search(len(best), func(j int) bool { return best[j].logProb < lp })
		if len(best) < k {
			best = append(best, scored{})
		}
		copy(best[pos+1:], best[pos:len(best)-1])
		best[pos] = scored{index: i, logProb: lp}
	}
	return best
}
