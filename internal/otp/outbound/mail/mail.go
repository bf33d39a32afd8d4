package mail

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	pkgmail "github.com/shandysiswandi/shopauth/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const subject = "Your verification code"

// Mail delivers OTP codes through a pkg/mail driver.
type Mail struct {
	mail pkgmail.Mail
	ins  instrument.Instrumentation
}

func New(m pkgmail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{mail: m, ins: ins}
}

func (m *Mail) SendCode(ctx context.Context, p entity.Purpose, email, code string, ttl time.Duration) (err error) {
	ctx, span := m.ins.Tracer("otp.outbound.mail").Start(ctx, "SendCode")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if code == "" {
		return errors.New("otp mail: empty code")
	}

	return m.mail.Send(ctx, pkgmail.Message{
		To:       []string{email},
		Subject:  subject,
		TextBody: Body(p, code, ttl),
	})
}

// Body renders the plain text message for code.
func Body(p entity.Purpose, code string, ttl time.Duration) string {
	action := "complete your registration"
	if p == entity.PurposeLogin {
		action = "sign in"
	}

	minutes := int(math.Ceil(ttl.Minutes()))

	return fmt.Sprintf(
		"Use the code below to %s.\n\n    %s\n\nThe code expires in %d minutes. If you did not request it, ignore this email.\n",
		action, code, minutes,
	)
}
