package inbound

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/shopauth/internal/invoice/usecase"
	"github.com/shandysiswandi/shopauth/internal/pkg/jwt"
	"github.com/shandysiswandi/shopauth/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Generate renders the order as a PDF attachment. When the invoice was
// archived the download link is returned in the X-Invoice-URL header.
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if clm := jwt.GetAuth(r.Context()); clm != nil {
		slog.InfoContext(r.Context(), "invoice requested", "order_id", req.ID, "by", clm.Email)
	}

	resp, err := h.uc.Generate(r.Context(), usecase.GenerateInput{
		ID:               req.ID,
		CustomerName:     req.CustomerName,
		CustomerAddress:  req.CustomerAddress,
		CustomerPhone:    req.CustomerPhone,
		CustomerEmail:    req.CustomerEmail,
		ProductType:      req.ProductType,
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		Total:            req.Total,
		PaymentMethod:    req.PaymentMethod,
		InstallationDate: req.InstallationDate,
	})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if resp.URL != "" {
		header.Set(HeaderInvoiceURL, resp.URL)
	}

	return &router.File{
		ContentType: "application/pdf",
		Filename:    resp.Document.Filename,
		Body:        resp.Document.PDF,
		Header:      header,
	}, nil
}
