package store

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/kvstore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store persists OTP records in a kvstore.Store. The stored value is the
// sealed digest; the key carries purpose and email.
type Store struct {
	kv  kvstore.Store
	ins instrument.Instrumentation
}

func New(kv kvstore.Store, ins instrument.Instrumentation) *Store {
	return &Store{kv: kv, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.store").Start(ctx, name, trace.WithAttributes(attribute.String("otp.key", key)))
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) SaveRecord(ctx context.Context, rec entity.Record, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SaveRecord", rec.Key())
	defer func() { s.endSpan(span, err) }()

	return s.kv.Set(ctx, rec.Key(), rec.Sealed, ttl)
}

func (s *Store) GetRecord(ctx context.Context, p entity.Purpose, email string) (_ *entity.Record, err error) {
	key := entity.Key(p, email)
	ctx, span := s.startSpan(ctx, "GetRecord", key)
	defer func() { s.endSpan(span, err) }()

	sealed, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &entity.Record{Purpose: p, Email: email, Sealed: sealed}, nil
}

func (s *Store) ConsumeRecord(ctx context.Context, rec entity.Record) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeRecord", rec.Key())
	defer func() { s.endSpan(span, err) }()

	return s.kv.CompareAndDelete(ctx, rec.Key(), rec.Sealed)
}
