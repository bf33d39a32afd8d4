package apiclient

import "context"

type SendOTPResult struct {
	Email     string `json:"email"`
	ExpiresIn int    `json:"expiresIn"`
	OTP       string `json:"otp,omitempty"`
}

type VerifyOTPResult struct {
	Email       string `json:"email"`
	Verified    bool   `json:"verified"`
	AccessToken string `json:"accessToken,omitempty"`
}

type emailBody struct {
	Email string `json:"email"`
}

type verifyBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (c *Client) SendRegisterOTP(ctx context.Context, email string) (*SendOTPResult, error) {
	var out SendOTPResult
	if err := c.Post(ctx, "/register/send-otp", emailBody{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyRegisterOTP(ctx context.Context, email, otp string) (*VerifyOTPResult, error) {
	var out VerifyOTPResult
	if err := c.Post(ctx, "/register/verify-otp", verifyBody{Email: email, OTP: otp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendLoginOTP(ctx context.Context, email string) (*SendOTPResult, error) {
	var out SendOTPResult
	if err := c.Post(ctx, "/login/send-otp", emailBody{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLoginOTP redeems a login code. A returned access token is kept for
// later requests.
func (c *Client) VerifyLoginOTP(ctx context.Context, email, otp string) (*VerifyOTPResult, error) {
	var out VerifyOTPResult
	if err := c.Post(ctx, "/login/verify-otp", verifyBody{Email: email, OTP: otp}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken != "" {
		c.SetToken(out.AccessToken)
	}
	return &out, nil
}
