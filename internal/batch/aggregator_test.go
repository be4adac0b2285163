package batch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kotobatl/kotoba/internal/engine"
	"github.com/kotobatl/kotoba/internal/engine/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func upper(text, src, tgt string) (engine.Translation, error) {
	return engine.Translation{Text: strings.ToUpper(text), Score: 0.9}, nil
}

func TestTranslate_MergesConcurrentRequests(t *testing.T) {
	tr := &mock.Translator{TranslateFunc: upper}
	a := New(tr, Config{MaxWait: 20 * time.Millisecond})
	defer a.Close()

	texts := []string{"one", "two", "three", "four"}
	results := make([]engine.Translation, len(texts))
	errs := make([]error, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			results[i], errs[i] = a.Translate(context.Background(), text, "en", "ja")
		}(i, text)
	}
	wg.Wait()

	for i, text := range texts {
		if errs[i] != nil {
			t.Fatalf("Translate(%q): %v", text, errs[i])
		}
		if want := strings.ToUpper(text); results[i].Text != want {
			t.Errorf("results[%d].Text = %q, want %q", i, results[i].Text, want)
		}
	}

	var batched int
	calls := tr.Batches()
	for _, call := range calls {
		if call.Src != "en" || call.Tgt != "ja" {
			t.Errorf("batch dispatched with pair %s→%s, want en→ja", call.Src, call.Tgt)
		}
		batched += len(call.Texts)
	}
	if batched != len(texts) {
		t.Errorf("batched %d texts across %d calls, want all %d",
			batched, len(calls), len(texts))
	}
}

func TestTranslate_GroupsByLanguagePair(t *testing.T) {
	tr := &mock.Translator{TranslateFunc: func(text, src, tgt string) (engine.Translation, error) {
		return engine.Translation{Text: text + "/" + src + "-" + tgt}, nil
	}}
	a := New(tr, Config{MaxWait: 20 * time.Millisecond})
	defer a.Close()

	reqs := []struct{ text, src, tgt string }{
		{"a", "en", "ja"},
		{"b", "en", "de"},
		{"c", "en", "ja"},
		{"d", "en", "de"},
	}

	var wg sync.WaitGroup
	for _, r := range reqs {
		wg.Add(1)
		go func(text, src, tgt string) {
			defer wg.Done()
			got, err := a.Translate(context.Background(), text, src, tgt)
			if err != nil {
				t.Errorf("Translate(%q): %v", text, err)
				return
			}
			if want := text + "/" + src + "-" + tgt; got.Text != want {
				t.Errorf("Translate(%q) = %q, want %q", text, got.Text, want)
			}
		}(r.text, r.src, r.tgt)
	}
	wg.Wait()

	// Every dispatched batch must be pair-pure.
	for _, call := range tr.Batches() {
		for _, text := range call.Texts {
			for _, r := range reqs {
				if r.text == text && (r.src != call.Src || r.tgt != call.Tgt) {
					t.Errorf("text %q dispatched under pair %s→%s, belongs to %s→%s",
						text, call.Src, call.Tgt, r.src, r.tgt)
				}
			}
		}
	}
}

func TestTranslate_SaturatedQueueServesDirectly(t *testing.T) {
	release := make(chan struct{})
	tr := &mock.Translator{TranslateFunc: func(text, src, tgt string) (engine.Translation, error) {
		if text == "slow" {
			<-release
		}
		return engine.Translation{Text: strings.ToUpper(text)}, nil
	}}
	a := New(tr, Config{QueueSize: 1, MaxWait: 5 * time.Millisecond})
	defer a.Close()
	defer close(release)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Translate(context.Background(), "slow", "en", "ja")
	}()

	// Wait until the worker has dispatched the slow batch and is blocked.
	waitFor(t, func() bool { return len(tr.Batches()) > 0 })

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Translate(context.Background(), "queued", "en", "ja")
	}()
	waitFor(t, func() bool { return len(a.queue) == 1 })

	// Queue full and the worker busy: this one must not wait for either.
	start := time.Now()
	got, err := a.Translate(context.Background(), "direct", "en", "ja")
	if err != nil {
		t.Fatalf("Translate(direct): %v", err)
	}
	if got.Text != "DIRECT" {
		t.Errorf("Text = %q, want DIRECT", got.Text)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("direct fallback took %v", elapsed)
	}

	release <- struct{}{}
	wg.Wait()
}

func TestTranslate_PendingTimeoutFallsBack(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	tr := &mock.Translator{TranslateFunc: func(text, src, tgt string) (engine.Translation, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return engine.Translation{Text: strings.ToUpper(text)}, nil
	}}
	a := New(tr, Config{MaxWait: 5 * time.Millisecond, PendingTimeout: 30 * time.Millisecond})

	got, err := a.Translate(context.Background(), "hello", "en", "ja")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got.Text != "HELLO" {
		t.Errorf("Text = %q, want the direct retry result", got.Text)
	}

	close(release)
	a.Close()
}

func TestTranslate_CancelledBeforeFlushIsDropped(t *testing.T) {
	tr := &mock.Translator{TranslateFunc: upper}
	a := New(tr, Config{MaxWait: 10 * time.Millisecond})
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Translate(ctx, "late", "en", "ja")
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// The worker must drop the entry, not dispatch it.
	time.Sleep(40 * time.Millisecond)
	if n := len(tr.Batches()); n != 0 {
		t.Errorf("cancelled entry dispatched in %d batch calls", n)
	}
	if n := len(tr.Translations()); n != 0 {
		t.Errorf("cancelled entry served directly %d times", n)
	}
}

func TestTranslate_AfterCloseFallsBack(t *testing.T) {
	tr := &mock.Translator{TranslateFunc: upper}
	a := New(tr, Config{MaxWait: 5 * time.Millisecond, PendingTimeout: 20 * time.Millisecond})
	a.Close()

	got, err := a.Translate(context.Background(), "bye", "en", "ja")
	if err != nil {
		t.Fatalf("Translate after Close: %v", err)
	}
	if got.Text != "BYE" {
		t.Errorf("Text = %q, want BYE", got.Text)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a := New(&mock.Translator{}, Config{})
	a.Close()
	a.Close()
}

func TestDynamicMax(t *testing.T) {
	tests := []struct {
		name      string
		util      float64
		engineMax int
		want      int
	}{
		{"unknown utilization", -1, 64, maxLowUtilization},
		{"low utilization", 0.3, 64, maxLowUtilization},
		{"mid utilization", 0.5, 64, maxMidUtilization},
		{"upper mid", 0.79, 64, maxMidUtilization},
		{"high utilization", 0.8, 64, maxHighUtilization},
		{"critical", 0.95, 64, maxHighUtilization},
		{"engine cap wins", -1, 4, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &Aggregator{
				tr:  &mock.Translator{Max: tc.engineMax},
				cfg: Config{Headroom: func() float64 { return tc.util }},
			}
			if got := a.dynamicMax(); got != tc.want {
				t.Errorf("dynamicMax() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDynamicMax_NoHeadroom(t *testing.T) {
	a := &Aggregator{tr: &mock.Translator{Max: 64}, cfg: Config{}}
	if got := a.dynamicMax(); got != maxLowUtilization {
		t.Errorf("dynamicMax() = %d, want %d", got, maxLowUtilization)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
