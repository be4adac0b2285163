package engine

import "context"

// Options carries per-request generation overrides from the RPC boundary to
// the engine. Engines treat every field as a clamp: an override can tighten a
// default but never exceed it. The zero value means no override.
type Options struct {
	// MaxLength caps generated sequence length in tokens.
	MaxLength int

	// BeamSize caps the beam width.
	BeamSize int
}

type optionsKey struct{}

// WithOptions returns a context carrying o.
func WithOptions(ctx context.Context, o Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, o)
}

// OptionsFrom extracts request options from ctx, reporting whether any were
// set.
func OptionsFrom(ctx context.Context) (Options, bool) {
	o, ok := ctx.Value(optionsKey{}).(Options)
	return o, ok
}
