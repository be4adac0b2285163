// Package batch merges concurrent single translation requests into
// GPU-efficient batches.
//
// Each arriving request becomes a queued entry whose caller awaits a result.
// A background worker drains the queue into a batch bounded by a short wait
// and a dynamic size derived from current VRAM headroom, groups the drained
// entries by language pair, and issues one TranslateBatch per group. Order
// within a group always matches the order the entries were drained in.
//
// The aggregator degrades, never blocks: a full queue, a failed batch call,
// a shutdown, or a pending-result timeout all fall through to the direct
// per-request path with identical semantics.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kotobatl/kotoba/internal/engine"
)

// Defaults for the flush policy.
const (
	defaultQueueSize      = 256
	defaultMaxWait        = 30 * time.Millisecond
	defaultPendingTimeout = 10 * time.Second
)

// Dynamic batch maxima per VRAM utilization band, bounded above by the
// engine's static max.
const (
	maxLowUtilization  = 32
	maxMidUtilization  = 16
	maxHighUtilization = 8
)

// errShutdown fails queued entries when the worker stops; callers translate
// it into the direct path.
var errShutdown = errors.New("batch: aggregator shut down")

// Headroom reports current accelerator memory utilization in [0,1]. A
// negative value means unknown, which is treated as low utilization.
type Headroom func() float64

// Config configures an [Aggregator].
type Config struct {
	// QueueSize bounds the intake queue. When full, arrivals are served on
	// the direct path. Default 256.
	QueueSize int

	// MaxWait is how long a batch may wait for company after its first
	// entry. Default 30ms.
	MaxWait time.Duration

	// PendingTimeout is the hard ceiling on one entry's wait for a batched
	// result before it falls through to the direct path. Default 10s.
	PendingTimeout time.Duration

	// Headroom supplies VRAM utilization for dynamic batch sizing. Optional.
	Headroom Headroom
}

type outcome struct {
	tr  engine.Translation
	err error
}

type entry struct {
	id     uuid.UUID
	text   string
	src    string
	tgt    string
	ctx    context.Context
	result chan outcome
}

// Aggregator is the batching front-end of a [engine.Translator].
type Aggregator struct {
	tr  engine.Translator
	cfg Config

	queue chan *entry
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// New starts an aggregator in front of tr. Call [Aggregator.Close] on
// shutdown.
func New(tr engine.Translator, cfg Config) *Aggregator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.PendingTimeout <= 0 {
		cfg.PendingTimeout = defaultPendingTimeout
	}
	a := &Aggregator{
		tr:    tr,
		cfg:   cfg,
		queue: make(chan *entry, cfg.QueueSize),
		done:  make(chan struct{}),
	}
	a.wg.Add(1)
	go a.worker()
	return a
}

// Close stops the worker. Entries still queued are failed over to the direct
// path by their callers.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.wg.Wait()
	})
}

// Translate queues one request for batching and awaits its result. Every
// degraded condition falls back to the engine's per-request path.
func (a *Aggregator) Translate(ctx context.Context, text, src, tgt string) (engine.Translation, error) {
	e := &entry{
		id:     uuid.New(),
		text:   text,
		src:    src,
		tgt:    tgt,
		ctx:    ctx,
		result: make(chan outcome, 1),
	}

	select {
	case a.queue <- e:
	default:
		// Queue saturated: serve directly rather than build backlog.
		return a.tr.Translate(ctx, text, src, tgt)
	}

	timer := time.NewTimer(a.cfg.PendingTimeout)
	defer timer.Stop()

	select {
	case out := <-e.result:
		if errors.Is(out.err, errShutdown) {
			return a.tr.Translate(ctx, text, src, tgt)
		}
		return out.tr, out.err
	case <-ctx.Done():
		// Cancelled before flush: the worker drops the entry silently.
		// Cancelled after dispatch: the batch completes and the result is
		// discarded here.
		return engine.Translation{}, ctx.Err()
	case <-timer.C:
		slog.Warn("batched result timed out, serving directly",
			"request_id", e.id, "src", src, "tgt", tgt)
		return a.tr.Translate(ctx, text, src, tgt)
	}
}

// worker assembles and flushes batches until Close.
func (a *Aggregator) worker() {
	defer a.wg.Done()
	for {
		var first *entry
		select {
		case <-a.done:
			a.failQueued()
			return
		case first = <-a.queue:
		}

		batch := a.collect(first)
		a.flush(batch)
	}
}

// collect drains the queue after a first arrival until the dynamic maximum
// is reached or MaxWait elapses.
func (a *Aggregator) collect(first *entry) []*entry {
	max := a.dynamicMax()
	batch := []*entry{first}
	deadline := time.NewTimer(a.cfg.MaxWait)
	defer deadline.Stop()

	for len(batch) < max {
		select {
		case e := <-a.queue:
			batch = append(batch, e)
		case <-deadline.C:
			return batch
		case <-a.done:
			return batch
		}
	}
	return batch
}

// dynamicMax derives the batch ceiling from VRAM utilization, bounded above
// by the engine's static max.
func (a *Aggregator) dynamicMax() int {
	max := maxLowUtilization
	if a.cfg.Headroom != nil {
		switch util := a.cfg.Headroom(); {
		case util < 0:
			// Unknown; assume the permissive band.
		case util >= 0.8:
			max = maxHighUtilization
		case util >= 0.5:
			max = maxMidUtilization
		}
	}
	if em := a.tr.MaxBatchSize(); em > 0 && max > em {
		max = em
	}
	return max
}

type pairKey struct{ src, tgt string }

// flush groups the batch per language pair and dispatches one TranslateBatch
// per group. Group order preserves drain order; entries cancelled before
// flush are silently dropped.
func (a *Aggregator) flush(batch []*entry) {
	groups := make(map[pairKey][]*entry)
	var order []pairKey
	for _, e := range batch {
		if e.ctx.Err() != nil {
			continue
		}
		k := pairKey{src: e.src, tgt: e.tgt}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		a.flushGroup(k, groups[k])
	}
}

func (a *Aggregator) flushGroup(k pairKey, group []*entry) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.PendingTimeout)
	defer cancel()

	texts := make([]string, len(group))
	for i, e := range group {
		texts[i] = e.text
	}

	results, err := a.tr.TranslateBatch(ctx, texts, k.src, k.tgt)
	if err != nil || len(results) != len(group) {
		if err != nil {
			slog.Warn("batch dispatch failed, retrying entries directly",
				"src", k.src, "tgt", k.tgt, "size", len(group), "err", err)
		}
		// Preserve semantics entry by entry on the direct path.
		for _, e := range group {
			tr, derr := a.tr.Translate(e.ctx, e.text, e.src, e.tgt)
			e.result <- outcome{tr: tr, err: derr}
		}
		return
	}

	for i, e := range group {
		e.result <- outcome{tr: results[i]}
	}
}

// failQueued drains the queue on shutdown so no caller waits out the full
// pending timeout.
func (a *Aggregator) failQueued() {
	for {
		select {
		case e := <-a.queue:
			e.result <- outcome{err: errShutdown}
		default:
			return
		}
	}
}
