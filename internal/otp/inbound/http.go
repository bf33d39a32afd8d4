package inbound

import (
	"context"

	"github.com/shandysiswandi/shopauth/internal/otp/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/register/send-otp", end.RegisterSendOTP)
	r.POST("/register/verify-otp", end.RegisterVerifyOTP)

	r.POST("/login/send-otp", end.LoginSendOTP)
	r.POST("/login/verify-otp", end.LoginVerifyOTP)
}
