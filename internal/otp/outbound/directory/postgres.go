package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const queryUserExists = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = $1)`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres answers user existence from the users table.
type Postgres struct {
	conn querier
	ins  instrument.Instrumentation
}

func NewPostgres(conn *pgxpool.Pool, ins instrument.Instrumentation) *Postgres {
	return &Postgres{conn: conn, ins: ins}
}

func (p *Postgres) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.ins.Tracer("otp.outbound.directory").Start(ctx, name)
}

func (p *Postgres) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (p *Postgres) UserExists(ctx context.Context, email string) (_ bool, err error) {
	ctx, span := p.startSpan(ctx, "UserExists")
	defer func() { p.endSpan(span, err) }()

	var exists bool
	err = p.conn.QueryRow(ctx, queryUserExists, email).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return exists, nil
}
