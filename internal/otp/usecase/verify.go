package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyInput struct {
	Purpose entity.Purpose
	Email   string `json:"email" validate:"required,contains=@"`
	Code    string `json:"otp" validate:"required"`
}

type VerifyOutput struct {
	Email    string
	Verified bool
	// AccessToken is issued on a successful login verification.
	AccessToken string
}

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (_ *VerifyOutput, err error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	defer func() { s.countVerify(ctx, in.Purpose, err) }()

	if !supported(in.Purpose) {
		slog.WarnContext(ctx, "otp purpose not supported", "purpose", in.Purpose.String())
		return nil, goerror.NewInvalidInput("Unsupported OTP purpose")
	}

	if err := s.validator.Validate(in); err != nil {
		if in.Email == "" || in.Code == "" {
			return nil, goerror.NewInvalidInput("Email and OTP are required")
		}
		return nil, goerror.NewInvalidInput("Valid email is required")
	}

	rec, err := s.repoStore.GetRecord(ctx, in.Purpose, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp record not found", "email", in.Email, "purpose", in.Purpose.String())
		return nil, goerror.NewBusiness("OTP expired or not found", goerror.CodeExpired)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "email", in.Email, "error", err)
		return nil, goerror.NewDependency(err, "Failed to read OTP")
	}

	match, err := s.sealer.Match(rec.Sealed, in.Code)
	if err != nil {
		slog.WarnContext(ctx, "stored otp record is unreadable", "key", rec.Key(), "error", err)
		return nil, goerror.NewBusiness("OTP expired or not found", goerror.CodeExpired)
	}
	if !match {
		slog.WarnContext(ctx, "otp mismatch", "email", in.Email, "purpose", in.Purpose.String())
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeMismatch)
	}

	consumed, err := s.repoStore.ConsumeRecord(ctx, *rec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp record", "key", rec.Key(), "error", err)
		return nil, goerror.NewDependency(err, "Failed to verify OTP")
	}
	if !consumed {
		slog.WarnContext(ctx, "otp record consumed or replaced concurrently", "key", rec.Key())
		return nil, goerror.NewBusiness("OTP expired or not found", goerror.CodeExpired)
	}

	out := &VerifyOutput{Email: in.Email, Verified: true}

	if in.Purpose == entity.PurposeLogin && s.token != nil {
		token, err := s.token.Generate(in.Email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate access token", "email", in.Email, "error", err)
			return nil, goerror.NewServer(err)
		}
		out.AccessToken = token
	}

	return out, nil
}

func (s *Usecase) countVerify(ctx context.Context, p entity.Purpose, err error) {
	if s.verifiedCounter == nil {
		return
	}

	result := "success"
	if gerr, ok := goerror.As(err); ok {
		result = strings.ToLower(strings.TrimPrefix(gerr.Code().String(), "ERROR_CODE_"))
	} else if err != nil {
		result = "internal"
	}

	s.verifiedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", p.String()),
		attribute.String("result", result),
	))
}
