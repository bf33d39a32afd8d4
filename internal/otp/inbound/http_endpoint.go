package inbound

import (
	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/otp/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
)

// HTTPEndpoint exposes the register and login OTP handlers.
type HTTPEndpoint struct {
	uc uc
}

// RegisterSendOTP emails a registration code.
func (h *HTTPEndpoint) RegisterSendOTP(r *router.Request) (any, error) {
	return h.send(r, entity.PurposeRegister)
}

// RegisterVerifyOTP redeems a registration code.
func (h *HTTPEndpoint) RegisterVerifyOTP(r *router.Request) (any, error) {
	return h.verify(r, entity.PurposeRegister)
}

// LoginSendOTP emails a login code to an existing user.
func (h *HTTPEndpoint) LoginSendOTP(r *router.Request) (any, error) {
	return h.send(r, entity.PurposeLogin)
}

// LoginVerifyOTP redeems a login code and returns an access token when
// token signing is configured.
func (h *HTTPEndpoint) LoginVerifyOTP(r *router.Request) (any, error) {
	return h.verify(r, entity.PurposeLogin)
}

func (h *HTTPEndpoint) send(r *router.Request, p entity.Purpose) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Purpose: p,
		Email:   req.Email,
	})
	if err != nil {
		return nil, err
	}

	return SendOTPResponse{
		Email:     resp.Email,
		ExpiresIn: resp.ExpiresIn,
		OTP:       resp.Code,
	}, nil
}

func (h *HTTPEndpoint) verify(r *router.Request, p entity.Purpose) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Purpose: p,
		Email:   req.Email,
		Code:    req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		Email:       resp.Email,
		Verified:    resp.Verified,
		AccessToken: resp.AccessToken,
	}, nil
}
