package app

import (
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/shopauth/internal/invoice"
	"github.com/shandysiswandi/shopauth/internal/otp"
)

func (a *App) initModules() error {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			DBConn:     a.dbConn,
			KV:         a.kv,
			Mail:       a.mail,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			return fmt.Errorf("init module otp: %w", err)
		}
	}

	if !a.config.GetBool("modules.invoice.enabled") {
		return nil
	}

	// Every invoice request needs a bearer token.
	if a.jwt == nil {
		slog.Warn("jwt.secret is not set, module invoice is not mounted")
		return nil
	}

	if err := invoice.New(invoice.Dependency{
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		Storage:    a.storage,
	}); err != nil {
		return fmt.Errorf("init module invoice: %w", err)
	}

	return nil
}
