package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/shopauth/internal/otp/inbound"
	"github.com/shandysiswandi/shopauth/internal/otp/outbound/directory"
	"github.com/shandysiswandi/shopauth/internal/otp/outbound/mail"
	"github.com/shandysiswandi/shopauth/internal/otp/outbound/store"
	"github.com/shandysiswandi/shopauth/internal/otp/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/config"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"github.com/shandysiswandi/shopauth/internal/pkg/hash"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/jwt"
	"github.com/shandysiswandi/shopauth/internal/pkg/kvstore"
	pkgmail "github.com/shandysiswandi/shopauth/internal/pkg/mail"
	pkgotp "github.com/shandysiswandi/shopauth/internal/pkg/otp"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
)

const (
	DirectoryPostgres = "postgres"
	DirectoryMemory   = "memory"

	envProduction = "production"
)

// ErrUnknownDirectory indicates an unsupported directory.driver value.
var ErrUnknownDirectory = errors.New("otp: unknown directory driver")

type Dependency struct {
	// DBConn backs the postgres directory driver. It may be nil with the memory driver.
	DBConn     *pgxpool.Pool
	KV         kvstore.Store              `validate:"required"`
	Mail       pkgmail.Mail               `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// JWT signs the login access token. Nil disables it.
	JWT jwt.JWT
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dir, err := newDirectory(dep)
	if err != nil {
		return err
	}

	digits := dep.Config.GetInt("otp.digits")
	if digits == 0 {
		digits = pkgotp.DefaultDigits
	}
	code, err := pkgotp.NewNumeric(digits)
	if err != nil {
		return goerror.NewConfiguration(err)
	}

	echo := dep.Config.GetBool("otp.debug_echo_code")
	if echo && dep.Config.GetString("app.env") == envProduction {
		slog.Warn("otp.debug_echo_code is ignored in production")
		echo = false
	}

	uc := usecase.New(usecase.Dependency{
		RepoStore:     store.New(dep.KV, dep.Instrument),
		RepoMail:      mail.New(dep.Mail, dep.Instrument),
		RepoDirectory: dir,
		Sealer:        hash.NewSalted(dep.HMAC),
		Code:          code,
		Token:         dep.JWT,
		Validator:     dep.Validator,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		TTL:           dep.Config.GetSecond("otp.ttl_seconds"),
		EchoCode:      echo,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

type userDirectory interface {
	UserExists(ctx context.Context, email string) (bool, error)
}

func newDirectory(dep Dependency) (userDirectory, error) {
	switch driver := dep.Config.GetString("directory.driver"); driver {
	case DirectoryPostgres:
		if dep.DBConn == nil {
			return nil, goerror.NewConfiguration(fmt.Errorf("%w: directory.driver=postgres needs database.url", goerror.ErrConfiguration))
		}
		return directory.NewPostgres(dep.DBConn, dep.Instrument), nil
	case DirectoryMemory, "":
		return directory.NewMemory(dep.Config.GetArray("directory.users")...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirectory, driver)
	}
}
