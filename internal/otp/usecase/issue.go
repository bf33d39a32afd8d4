package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type IssueInput struct {
	Purpose entity.Purpose
	Email   string `json:"email" validate:"required,contains=@"`
}

type IssueOutput struct {
	Email     string
	ExpiresIn int
	// Code is set only when code echo is enabled.
	Code string
}

func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)

	if !supported(in.Purpose) {
		slog.WarnContext(ctx, "otp purpose not supported", "purpose", in.Purpose.String())
		return nil, goerror.NewInvalidInput("Unsupported OTP purpose")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput("Valid email is required")
	}

	if in.Purpose == entity.PurposeLogin {
		exists, err := s.repoDirectory.UserExists(ctx, in.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo check user exists", "email", in.Email, "error", err)
			return nil, goerror.NewDependency(err, "Failed to look up user")
		}
		if !exists {
			slog.WarnContext(ctx, "login otp requested for unknown user", "email", in.Email)
			return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
		}
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	sealed, err := s.sealer.Seal(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.Record{
		Purpose:   in.Purpose,
		Email:     in.Email,
		Sealed:    sealed,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}

	if err := s.repoStore.SaveRecord(ctx, rec, s.ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo save otp record", "key", rec.Key(), "error", err)
		return nil, goerror.NewDependency(err, "Failed to store OTP")
	}

	if err := s.repoMail.SendCode(ctx, in.Purpose, in.Email, code, s.ttl); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", in.Email, "purpose", in.Purpose.String(), "error", err)
		if in.Purpose == entity.PurposeLogin {
			return nil, goerror.NewDependency(err, "Failed to send OTP email: "+err.Error())
		}
		return nil, goerror.NewDependency(err, "Failed to send OTP email")
	}

	if s.issuedCounter != nil {
		s.issuedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", in.Purpose.String())))
	}

	out := &IssueOutput{
		Email:     in.Email,
		ExpiresIn: int(s.ttl.Seconds()),
	}
	if s.echoCode {
		out.Code = code
	}

	return out, nil
}
