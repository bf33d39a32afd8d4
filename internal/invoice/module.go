package invoice

import (
	"github.com/shandysiswandi/shopauth/internal/invoice/entity"
	"github.com/shandysiswandi/shopauth/internal/invoice/inbound"
	"github.com/shandysiswandi/shopauth/internal/invoice/outbound/archive"
	"github.com/shandysiswandi/shopauth/internal/invoice/outbound/pdf"
	"github.com/shandysiswandi/shopauth/internal/invoice/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/config"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
	"github.com/shandysiswandi/shopauth/internal/pkg/storage"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
)

type Dependency struct {
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// Storage archives rendered invoices. Nil disables archiving.
	Storage storage.Storage
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	renderer := pdf.NewRenderer(
		entity.Company{
			Name:    dep.Config.GetString("modules.invoice.company.name"),
			Address: dep.Config.GetString("modules.invoice.company.address"),
			Phone:   dep.Config.GetString("modules.invoice.company.phone"),
			Email:   dep.Config.GetString("modules.invoice.company.email"),
		},
		entity.Money{
			Symbol:    dep.Config.GetString("modules.invoice.currency.symbol"),
			Separator: dep.Config.GetString("modules.invoice.currency.separator"),
		},
		dep.Instrument,
	)

	ucDep := usecase.Dependency{
		Renderer:   renderer,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}
	if dep.Storage != nil && dep.Config.GetBool("modules.invoice.archive.enabled") {
		ucDep.Archive = archive.New(
			dep.Storage,
			dep.Config.GetString("modules.invoice.archive.prefix"),
			dep.Config.GetMinute("modules.invoice.archive.url_expiry_minutes"),
			dep.Instrument,
		)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, usecase.New(ucDep))

	return nil
}
