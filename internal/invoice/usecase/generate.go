package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/shandysiswandi/shopauth/internal/invoice/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
)

type GenerateInput struct {
	ID               string `json:"id" validate:"required,max=64,printascii,excludesall=/\\"`
	CustomerName     string `json:"customerName" validate:"required,notblank"`
	CustomerAddress  string `json:"customerAddress"`
	CustomerPhone    string `json:"customerPhone"`
	CustomerEmail    string `json:"customerEmail" validate:"omitempty,email"`
	ProductType      string `json:"productType" validate:"required"`
	Quantity         int    `json:"quantity" validate:"gt=0,max=100000"`
	UnitPrice        int64  `json:"unitPrice" validate:"gte=0,max=1000000000000"`
	Total            int64  `json:"total" validate:"gte=0,max=100000000000000000"`
	PaymentMethod    string `json:"paymentMethod"`
	InstallationDate string `json:"installationDate"`
}

type GenerateOutput struct {
	Document entity.Document
	// URL is the presigned download link when archiving succeeded.
	URL string
}

func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput("Invalid invoice data", fieldErrors(err)...)
	}

	order := entity.Order{
		ID:               in.ID,
		CustomerName:     in.CustomerName,
		CustomerAddress:  in.CustomerAddress,
		CustomerPhone:    in.CustomerPhone,
		CustomerEmail:    in.CustomerEmail,
		ProductType:      in.ProductType,
		Quantity:         in.Quantity,
		UnitPrice:        in.UnitPrice,
		Total:            in.Total,
		PaymentMethod:    in.PaymentMethod,
		InstallationDate: in.InstallationDate,
	}
	issuedAt := s.clock.Now()

	pdf, err := s.renderer.Render(ctx, order, issuedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render invoice pdf", "order_id", order.ID, "error", err)
		return nil, goerror.NewDependency(err, "Failed to generate invoice")
	}

	out := &GenerateOutput{Document: entity.Document{
		Number:   order.Number(),
		Filename: order.Filename(),
		IssuedAt: issuedAt,
		PDF:      pdf,
	}}

	if s.archive != nil {
		url, err := s.archive.Save(ctx, out.Document.Number, out.Document.Filename, pdf)
		if err != nil {
			slog.WarnContext(ctx, "failed to archive invoice", "order_id", order.ID, "error", err)
		} else {
			out.URL = url
		}
	}

	return out, nil
}

func fieldErrors(err error) []string {
	var verr validator.V10ValidationError
	if !errors.As(err, &verr) {
		return nil
	}

	keys := make([]string, 0, len(verr))
	for k := range verr {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, verr[k])
	}
	return kv
}
