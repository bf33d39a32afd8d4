package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	SaveRecord(ctx context.Context, rec entity.Record, ttl time.Duration) error
	// GetRecord returns goerror.ErrNotFound when no live record exists.
	GetRecord(ctx context.Context, p entity.Purpose, email string) (*entity.Record, error)
	// ConsumeRecord deletes rec only if the store still holds exactly rec.Sealed.
	ConsumeRecord(ctx context.Context, rec entity.Record) (bool, error)
}

type repoMail interface {
	SendCode(ctx context.Context, p entity.Purpose, email, code string, ttl time.Duration) error
}

type repoDirectory interface {
	UserExists(ctx context.Context, email string) (bool, error)
}

type sealer interface {
	Seal(plain string) (string, error)
	Match(sealed, plain string) (bool, error)
}

type codeGenerator interface {
	Generate() (string, error)
}

type tokenIssuer interface {
	Generate(email string) (string, error)
}

type Usecase struct {
	repoStore     repoStore
	repoMail      repoMail
	repoDirectory repoDirectory
	sealer        sealer
	code          codeGenerator
	token         tokenIssuer
	validator     validator.Validator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	ttl           time.Duration
	echoCode      bool

	issuedCounter   metric.Int64Counter
	verifiedCounter metric.Int64Counter
}

type Dependency struct {
	RepoStore     repoStore
	RepoMail      repoMail
	RepoDirectory repoDirectory
	Sealer        sealer
	Code          codeGenerator
	// Token is optional; without it login verification returns no access token.
	Token      tokenIssuer
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	// TTL defaults to entity.CodeTTL.
	TTL time.Duration
	// EchoCode returns the plaintext code in IssueOutput. Only for demos.
	EchoCode bool
}

func New(dep Dependency) *Usecase {
	ttl := dep.TTL
	if ttl <= 0 {
		ttl = entity.CodeTTL
	}

	meter := dep.Instrument.Meter("otp.usecase")

	issued, err := meter.Int64Counter("otp.issued", metric.WithDescription("Number of one-time codes issued"))
	if err != nil {
		slog.Error("failed to create otp issued counter", "error", err)
	}

	verified, err := meter.Int64Counter("otp.verified", metric.WithDescription("Number of one-time code verification attempts"))
	if err != nil {
		slog.Error("failed to create otp verified counter", "error", err)
	}

	return &Usecase{
		repoStore:       dep.RepoStore,
		repoMail:        dep.RepoMail,
		repoDirectory:   dep.RepoDirectory,
		sealer:          dep.Sealer,
		code:            dep.Code,
		token:           dep.Token,
		validator:       dep.Validator,
		clock:           dep.Clock,
		ins:             dep.Instrument,
		ttl:             ttl,
		echoCode:        dep.EchoCode,
		issuedCounter:   issued,
		verifiedCounter: verified,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func supported(p entity.Purpose) bool {
	return p == entity.PurposeRegister || p == entity.PurposeLogin
}
