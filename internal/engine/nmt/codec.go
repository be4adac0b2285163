package nmt

import (
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// Special tokens shared by the quantized encoder-decoder checkpoints.
const (
	bosToken = "<s>"
	eosToken = "</s>"
	padToken = "<pad>"
	unkToken = "<unk>"
)

// codec turns text into model token ids and back. Implementations carry the
// tokenizer's shared mutable state and must serialize access internally.
type codec interface {
	// encode tokenizes text with the source-language tag prepended and the
	// end-of-sequence marker appended.
	encode(text, srcTag string) ([]int64, error)

	// decode detokenizes generated ids. Special-token and language-tag
	// filtering happens in the engine, on the decoded string.
	decode(ids []int64) (string, error)

	// tokenID resolves a single token (e.g. a language tag) to its id.
	tokenID(token string) (int64, bool)
}

// hfCodec wraps a HuggingFace tokenizer.json loaded via sugarme. The
// underlying tokenizer keeps settable source-language state, so every
// read-modify-encode sequence holds the mutex; the generator is the slow
// path, not this lock.
type hfCodec struct {
	mu sync.Mutex
	tk *tokenizer.Tokenizer
}

// newHFCodec loads the tokenizer definition at path. A corrupted or missing
// asset fails here, at load time, never on a per-request call.
func newHFCodec(path string) (*hfCodec, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %q: %w", path, err)
	}
	return &hfCodec{tk: tk}, nil
}

func (c *hfCodec) encode(text, srcTag string) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tagID, ok := c.tk.TokenToId(srcTag)
	if !ok {
		return nil, fmt.Errorf("tokenizer has no id for language tag %q", srcTag)
	}
	eosID, ok := c.tk.TokenToId(eosToken)
	if !ok {
		return nil, fmt.Errorf("tokenizer has no id for %q", eosToken)
	}

	en, err := c.tk.EncodeSingle(text)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	ids := make([]int64, 0, len(en.Ids)+2)
	ids = append(ids, int64(tagID))
	for _, id := range en.Ids {
		ids = append(ids, int64(id))
	}
	ids = append(ids, int64(eosID))
	return ids, nil
}

func (c *hfCodec) decode(ids []int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ints := make([]int, len(ids))
	for i, id := range ids {
		ints[i] = int(id)
	}
	return c.tk.Decode(ints, false), nil
}

func (c *hfCodec) tokenID(token string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.tk.TokenToId(token)
	return int64(id), ok
}
