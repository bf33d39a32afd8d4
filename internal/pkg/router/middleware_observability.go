package router

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/shopauth/internal/pkg/config"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// maxLoggedBody caps how much of a JSON body is kept for the access log.
const maxLoggedBody = 16 << 10

// isJSON reports whether a Content-Type names a JSON document.
// An empty type counts as JSON because DecodeBody does not require one.
func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// bodyRecorder tracks status and size of a response and keeps a bounded copy
// of its body when the handler declared a JSON content type.
type bodyRecorder struct {
	http.ResponseWriter
	status  int
	written int
	kept    *bytes.Buffer
	clipped bool
	err     error
}

func (w *bodyRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
		if ct := w.Header().Get("Content-Type"); ct != "" && isJSON(ct) {
			w.kept = new(bytes.Buffer)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if w.kept != nil && !w.clipped {
		room := maxLoggedBody - w.kept.Len()
		if len(p) > room {
			w.kept.Write(p[:room])
			w.clipped = true
		} else {
			w.kept.Write(p)
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.written += n
	return n, err
}

// SetError receives the handler error so the span can record it.
func (w *bodyRecorder) SetError(err error) {
	w.err = err
}

func (w *bodyRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *bodyRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *bodyRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekRequestBody returns up to maxLoggedBody bytes of a JSON request body and
// leaves r.Body readable from the start.
func peekRequestBody(r *http.Request) (head []byte, clipped bool) {
	if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
		return nil, false
	}

	//nolint:errcheck // best effort, the handler sees the same read error
	head, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	if len(head) > maxLoggedBody {
		return head[:maxLoggedBody], true
	}
	return head, false
}

// httpTelemetry holds the instruments shared by every request.
type httpTelemetry struct {
	masker   masker
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPTelemetry(cfg config.Config, ins instrument.Instrumentation) *httpTelemetry {
	if ins == nil {
		ins = instrument.NewNoop()
	}

	var fields []string
	if cfg != nil {
		fields = cfg.GetArray("instrument.log_mask_fields")
	}

	meter := ins.Meter("http.server")
	requests, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return &httpTelemetry{
		masker:   newMasker(fields),
		tracer:   ins.Tracer("http.server"),
		requests: requests,
		duration: duration,
	}
}

// logBody renders a captured JSON body for the access log with masked fields.
func (t *httpTelemetry) logBody(raw []byte, clipped bool) any {
	switch {
	case len(raw) == 0:
		return nil
	case clipped:
		return fmt.Sprintf("<%d+ bytes, truncated>", len(raw))
	default:
		return t.masker.json(raw)
	}
}

func (t *httpTelemetry) record(r *http.Request, route string, rec *bodyRecorder, span trace.Span, elapsed time.Duration) {
	status := rec.statusCode()
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPResponseStatusCodeKey.Int(status),
	}

	if rec.err != nil {
		span.RecordError(rec.err)
	}
	switch {
	case status >= http.StatusInternalServerError && rec.err != nil:
		span.SetStatus(codes.Error, rec.err.Error())
	case status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, http.StatusText(status))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attrs...)
	span.SetAttributes(
		semconv.NetworkProtocolVersionKey.String(r.Proto),
		semconv.ServerAddressKey.String(r.Host),
		semconv.ClientAddressKey.String(r.RemoteAddr),
		attribute.Int("http.response_content_length", rec.written),
	)

	ctx := r.Context()
	if t.requests != nil {
		t.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if t.duration != nil {
		t.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
	}
}

// middlewareObservability opens a server span per request, records request
// metrics and writes one access log line. Request and response bodies are
// logged only when they are JSON, with configured fields masked.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	t := newHTTPTelemetry(cfg, ins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := t.tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()
			r = r.WithContext(ctx)

			reqBody, reqClipped := peekRequestBody(r)
			rec := &bodyRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			t.record(r, route, rec, span, elapsed)

			level := slog.LevelInfo
			if rec.statusCode() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "http request",
				"method", r.Method,
				"route", route,
				"uri", r.RequestURI,
				"client_ip", r.RemoteAddr,
				"status", rec.statusCode(),
				"bytes", rec.written,
				"latency_ms", elapsed.Milliseconds(),
				"headers", t.masker.headers(r.Header),
				"request_body", t.logBody(reqBody, reqClipped),
				"response_body", t.logBody(bodyBytes(rec.kept), rec.clipped),
			)
		})
	}
}

func bodyBytes(b *bytes.Buffer) []byte {
	if b == nil {
		return nil
	}
	return b.Bytes()
}
