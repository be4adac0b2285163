// Package rpcserver exposes the inference engines over gRPC: the
// TranslationService and OcrService implementations, the server construction
// with its interceptor chain and transport limits, and the request statistics
// surfaced by the status RPCs.
//
// The boundary contract is uniform across both services: requests are
// validated before touching an engine, engine failures are returned in-band
// as structured wire errors with is_success=false, caller cancellation is
// surfaced as a transport status, and calls arriving before the engine is
// ready receive Unavailable.
package rpcserver

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	kotobav1 "github.com/kotobatl/kotoba/api/kotoba/v1"
	"github.com/kotobatl/kotoba/internal/engine"
	"github.com/kotobatl/kotoba/internal/observe"
)

// statsWindow is the ring buffer size for rolling latency statistics.
const statsWindow = 100

// singleTranslator is the per-request translation path. Both the batching
// aggregator and a bare [engine.Translator] satisfy it.
type singleTranslator interface {
	Translate(ctx context.Context, text, src, tgt string) (engine.Translation, error)
}

// Compile-time assertion that TranslationServer implements the service.
var _ kotobav1.TranslationServiceServer = (*TranslationServer)(nil)

// TranslationServer implements kotoba.v1.TranslationService on top of a
// [engine.Translator], routing single requests through the batching
// aggregator when one is configured.
type TranslationServer struct {
	kotobav1.UnimplementedTranslationServiceServer

	eng     engine.Translator
	single  singleTranslator
	stats   *Stats
	metrics *observe.Metrics
	started time.Time
}

// NewTranslationServer builds the service. single is the per-request path,
// typically the batching aggregator; when nil, requests go straight to eng.
func NewTranslationServer(eng engine.Translator, single singleTranslator, m *observe.Metrics) *TranslationServer {
	if single == nil {
		single = eng
	}
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &TranslationServer{
		eng:     eng,
		single:  single,
		stats:   NewStats(statsWindow),
		metrics: m,
		started: time.Now(),
	}
}

// Stats exposes the rolling request statistics, for the debug surface.
func (s *TranslationServer) Stats() *Stats { return s.stats }

// Translate serves one translation request. Engine failures come back
// in-band with is_success=false; only cancellation and a not-ready engine
// surface as transport statuses.
func (s *TranslationServer) Translate(ctx context.Context, req *kotobav1.TranslateRequest) (*kotobav1.TranslateResponse, error) {
	if !s.eng.Ready() {
		return nil, status.Error(codes.Unavailable, "translation engine is not ready")
	}

	start := time.Now()
	resp := s.respond(req)

	src, tgt, err := languagePair(req.GetSourceLanguage(), req.GetTargetLanguage())
	if err == nil && strings.TrimSpace(req.GetSourceText()) == "" {
		err = engine.Errorf(engine.KindInvalidInput, "source text is empty")
	}
	var opts engine.Options
	if err == nil {
		opts, err = parseOptions(req.GetOptions())
	}
	if err != nil {
		s.fail(ctx, resp, err)
		return s.finish(resp, start), nil
	}

	tr, err := s.single.Translate(engine.WithOptions(ctx, opts), req.GetSourceText(), src, tgt)
	if err != nil {
		if isCancellation(err) {
			return nil, status.FromContextError(err).Err()
		}
		s.fail(ctx, resp, err)
		return s.finish(resp, start), nil
	}

	resp.IsSuccess = true
	resp.TranslatedText = tr.Text
	resp.ConfidenceScore = float32(tr.Score)
	return s.finish(resp, start), nil
}

// TranslateBatch serves one explicit batch. Responses align positionally
// with the requests; each entry succeeds or fails on its own.
func (s *TranslationServer) TranslateBatch(ctx context.Context, req *kotobav1.BatchTranslateRequest) (*kotobav1.BatchTranslateResponse, error) {
	if !s.eng.Ready() {
		return nil, status.Error(codes.Unavailable, "translation engine is not ready")
	}

	start := time.Now()
	reqs := req.GetRequests()
	responses := make([]*kotobav1.TranslateResponse, len(reqs))

	// Group valid entries by language pair, preserving arrival order within
	// each group, and dispatch one engine batch per group.
	type group struct {
		src, tgt string
		indices  []int
	}
	groups := make(map[string]*group)
	var order []string

	for i, r := range reqs {
		responses[i] = s.respond(r)
		src, tgt, err := languagePair(r.GetSourceLanguage(), r.GetTargetLanguage())
		if err != nil {
			s.fail(ctx, responses[i], err)
			continue
		}
		key := src + "\x00" + tgt
		g, ok := groups[key]
		if !ok {
			g = &group{src: src, tgt: tgt}
			groups[key] = g
			order = append(order, key)
		}
		g.indices = append(g.indices, i)
	}

	for _, key := range order {
		g := groups[key]
		texts := make([]string, len(g.indices))
		for j, i := range g.indices {
			texts[j] = reqs[i].GetSourceText()
		}

		results, err := s.eng.TranslateBatch(ctx, texts, g.src, g.tgt)
		if err != nil {
			if isCancellation(err) {
				return nil, status.FromContextError(err).Err()
			}
			for _, i := range g.indices {
				s.fail(ctx, responses[i], err)
			}
			continue
		}
		for j, i := range g.indices {
			responses[i].IsSuccess = true
			responses[i].TranslatedText = results[j].Text
			responses[i].ConfidenceScore = float32(results[j].Score)
		}
	}

	elapsed := time.Since(start)
	var ok, failed int32
	for _, r := range responses {
		r.ProcessingTimeMs = elapsed.Milliseconds()
		if r.IsSuccess {
			ok++
		} else {
			failed++
		}
	}

	s.stats.RecordBatch(elapsed)
	s.metrics.BatchDuration.Record(ctx, elapsed.Seconds())
	s.metrics.BatchSize.Record(ctx, int64(len(reqs)))

	return &kotobav1.BatchTranslateResponse{
		BatchId:               req.GetBatchId(),
		Responses:             responses,
		SuccessCount:          ok,
		FailureCount:          failed,
		TotalProcessingTimeMs: elapsed.Milliseconds(),
		Timestamp:             timestamppb.Now(),
	}, nil
}

// HealthCheck reports deep engine health plus request statistics.
func (s *TranslationServer) HealthCheck(ctx context.Context, _ *kotobav1.HealthCheckRequest) (*kotobav1.HealthCheckResponse, error) {
	err := s.eng.HealthCheck(ctx)
	resp := &kotobav1.HealthCheckResponse{
		IsHealthy: err == nil,
		Status:    "serving",
		Details:   s.details(),
		Timestamp: timestamppb.Now(),
	}
	if err != nil {
		resp.Status = err.Error()
	}
	return resp, nil
}

// IsReady reports whether the engine has loaded. Hosts poll this after
// observing the readiness marker.
func (s *TranslationServer) IsReady(_ context.Context, _ *kotobav1.IsReadyRequest) (*kotobav1.IsReadyResponse, error) {
	ready := s.eng.Ready()
	st := "ready"
	if !ready {
		st = "loading"
	}
	return &kotobav1.IsReadyResponse{
		IsReady:   ready,
		Status:    st,
		Details:   s.details(),
		Timestamp: timestamppb.Now(),
	}, nil
}

// respond builds the response skeleton echoing request identity.
func (s *TranslationServer) respond(req *kotobav1.TranslateRequest) *kotobav1.TranslateResponse {
	info := s.eng.Info()
	return &kotobav1.TranslateResponse{
		RequestId:       req.GetRequestId(),
		SourceText:      req.GetSourceText(),
		SourceLanguage:  req.GetSourceLanguage(),
		TargetLanguage:  req.GetTargetLanguage(),
		EngineName:      info.Name,
		EngineVersion:   info.Version,
		ConfidenceScore: float32(engine.ScoreUnsupported),
	}
}

// fail marks resp with the structured wire error and records the failure.
func (s *TranslationServer) fail(ctx context.Context, resp *kotobav1.TranslateResponse, err error) {
	resp.IsSuccess = false
	resp.Error = wireError(err)
	s.stats.IncrFailures()
	s.metrics.RecordEngineError(ctx, s.eng.Info().Name, engine.KindOf(err).String())
}

// finish stamps timings and records the latency sample.
func (s *TranslationServer) finish(resp *kotobav1.TranslateResponse, start time.Time) *kotobav1.TranslateResponse {
	elapsed := time.Since(start)
	resp.ProcessingTimeMs = elapsed.Milliseconds()
	resp.Timestamp = timestamppb.Now()
	s.stats.RecordTranslate(elapsed)
	s.metrics.TranslateDuration.Record(context.Background(), elapsed.Seconds(),
		metric.WithAttributes(observe.Attr("engine", s.eng.Info().Name)))
	return resp
}

// details builds the status map shared by both status RPCs.
func (s *TranslationServer) details() map[string]string {
	info := s.eng.Info()
	snap := s.stats.Snapshot()
	return map[string]string{
		"engine":           info.Name,
		"version":          info.Version,
		"languages":        strings.Join(info.Languages, ","),
		"uptime":           time.Since(s.started).Truncate(time.Second).String(),
		"requests":         strconv.FormatInt(snap.Requests, 10),
		"failures":         strconv.FormatInt(snap.Failures, 10),
		"translate_avg_ms": strconv.FormatInt(snap.Translate.Avg.Milliseconds(), 10),
		"translate_p95_ms": strconv.FormatInt(snap.Translate.P95.Milliseconds(), 10),
		"batch_avg_ms":     strconv.FormatInt(snap.Batch.Avg.Milliseconds(), 10),
		"max_batch_size":   strconv.Itoa(s.eng.MaxBatchSize()),
	}
}

// languagePair validates that both ends of the pair are present. Membership
// in the engine's enumeration is validated by the engine itself.
func languagePair(src, tgt *kotobav1.Language) (string, string, error) {
	if src.GetCode() == "" || tgt.GetCode() == "" {
		return "", "", engine.Errorf(engine.KindInvalidInput,
			"source and target language are required")
	}
	return src.GetCode(), tgt.GetCode(), nil
}

// parseOptions extracts the supported per-request overrides from the wire
// options map. Unknown keys are ignored; malformed values are rejected.
func parseOptions(raw map[string]string) (engine.Options, error) {
	var o engine.Options
	for key, val := range raw {
		switch key {
		case "max_length", "beam_size":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return engine.Options{}, engine.Errorf(engine.KindInvalidInput,
					"option %q must be a positive integer, got %q", key, val)
			}
			if key == "max_length" {
				o.MaxLength = n
			} else {
				o.BeamSize = n
			}
		default:
			// Forward-compatible: hosts may send options this build ignores.
		}
	}
	return o, nil
}
