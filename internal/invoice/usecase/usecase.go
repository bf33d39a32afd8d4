package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/shopauth/internal/invoice/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type renderer interface {
	Render(ctx context.Context, order entity.Order, issuedAt time.Time) ([]byte, error)
}

type archiver interface {
	Save(ctx context.Context, number, filename string, pdf []byte) (string, error)
}

type Usecase struct {
	renderer  renderer
	archive   archiver
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	Renderer renderer
	// Archive is optional.
	Archive    archiver
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		renderer:  dep.Renderer,
		archive:   dep.Archive,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("invoice.usecase").Start(ctx, name)
}
