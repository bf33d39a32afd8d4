package inbound

type SendOTPRequest struct {
	Email string `json:"email"`
}

type SendOTPResponse struct {
	Email     string `json:"email"`
	ExpiresIn int    `json:"expiresIn"`
	OTP       string `json:"otp,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyOTPResponse struct {
	Email       string `json:"email"`
	Verified    bool   `json:"verified"`
	AccessToken string `json:"accessToken,omitempty"`
}
