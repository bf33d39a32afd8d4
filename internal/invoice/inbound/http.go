package inbound

import (
	"context"

	"github.com/shandysiswandi/shopauth/internal/invoice/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
)

type uc interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.GenerateOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/invoices", end.Generate, r.Authenticated())
}
