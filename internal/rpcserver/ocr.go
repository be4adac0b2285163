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

// Compile-time assertion that OcrServer implements the service.
var _ kotobav1.OcrServiceServer = (*OcrServer)(nil)

// OcrServer implements kotoba.v1.OcrService on top of a [engine.Recognizer].
type OcrServer struct {
	kotobav1.UnimplementedOcrServiceServer

	eng     engine.Recognizer
	stats   *Stats
	metrics *observe.Metrics
	started time.Time
}

// NewOcrServer builds the service.
func NewOcrServer(eng engine.Recognizer, m *observe.Metrics) *OcrServer {
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &OcrServer{
		eng:     eng,
		stats:   NewStats(statsWindow),
		metrics: m,
		started: time.Now(),
	}
}

// Stats exposes the rolling request statistics, for the debug surface.
func (s *OcrServer) Stats() *Stats { return s.stats }

// Recognize serves one OCR request. The engine validates payload size and
// format before decoding; zero detected regions is a success with an empty
// list, never an error.
func (s *OcrServer) Recognize(ctx context.Context, req *kotobav1.OcrRequest) (*kotobav1.OcrResponse, error) {
	if !s.eng.Ready() {
		return nil, status.Error(codes.Unavailable, "ocr engine is not ready")
	}

	start := time.Now()
	info := s.eng.Info()
	resp := &kotobav1.OcrResponse{
		RequestId:     req.GetRequestId(),
		EngineName:    info.Name,
		EngineVersion: info.Version,
	}

	rec, err := s.eng.Recognize(ctx, req.GetImageData(), req.GetLanguages())
	if err != nil {
		if isCancellation(err) {
			return nil, status.FromContextError(err).Err()
		}
		resp.IsSuccess = false
		resp.Error = wireError(err)
		s.stats.IncrFailures()
		s.metrics.RecordEngineError(ctx, info.Name, engine.KindOf(err).String())
		return s.finish(resp, start), nil
	}

	resp.IsSuccess = true
	resp.Regions = make([]*kotobav1.TextRegion, len(rec.Regions))
	for i, r := range rec.Regions {
		resp.Regions[i] = toWireRegion(r)
	}
	resp.DetectionTimeMs = rec.DetectMS
	resp.RecognitionTimeMs = rec.RecognizeMS
	return s.finish(resp, start), nil
}

// HealthCheck reports deep engine health plus request statistics.
func (s *OcrServer) HealthCheck(ctx context.Context, _ *kotobav1.HealthCheckRequest) (*kotobav1.HealthCheckResponse, error) {
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

// IsReady reports whether the engine has loaded.
func (s *OcrServer) IsReady(_ context.Context, _ *kotobav1.IsReadyRequest) (*kotobav1.IsReadyResponse, error) {
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

func (s *OcrServer) finish(resp *kotobav1.OcrResponse, start time.Time) *kotobav1.OcrResponse {
	elapsed := time.Since(start)
	resp.ProcessingTimeMs = elapsed.Milliseconds()
	resp.Timestamp = timestamppb.Now()
	s.stats.RecordRecognize(elapsed)
	s.metrics.RecognizeDuration.Record(context.Background(), elapsed.Seconds(),
		metric.WithAttributes(observe.Attr("engine", s.eng.Info().Name)))
	return resp
}

func (s *OcrServer) details() map[string]string {
	info := s.eng.Info()
	snap := s.stats.Snapshot()
	return map[string]string{
		"engine":           info.Name,
		"version":          info.Version,
		"languages":        strings.Join(info.Languages, ","),
		"uptime":           time.Since(s.started).Truncate(time.Second).String(),
		"requests":         strconv.FormatInt(snap.Requests, 10),
		"failures":         strconv.FormatInt(snap.Failures, 10),
		"recognize_avg_ms": strconv.FormatInt(snap.Recognize.Avg.Milliseconds(), 10),
		"recognize_p95_ms": strconv.FormatInt(snap.Recognize.P95.Milliseconds(), 10),
	}
}

// toWireRegion converts an engine region to its wire form. Coordinates are
// already in the original image system.
func toWireRegion(r engine.Region) *kotobav1.TextRegion {
	polygon := make([]*kotobav1.Point, len(r.Polygon))
	for i, p := range r.Polygon {
		polygon[i] = &kotobav1.Point{X: int32(p.X), Y: int32(p.Y)}
	}
	return &kotobav1.TextRegion{
		Text:       r.Text,
		Confidence: float32(r.Confidence),
		BoundingBox: &kotobav1.BoundingBox{
			X:      int32(r.Box.X),
			Y:      int32(r.Box.Y),
			Width:  int32(r.Box.W),
			Height: int32(r.Box.H),
		},
		Polygon:   polygon,
		LineIndex: int32(r.LineIndex),
	}
}
