package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shandysiswandi/shopauth/internal/invoice/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// Renderer draws invoices with github.com/go-pdf/fpdf using the core
// Helvetica font.
type Renderer struct {
	company entity.Company
	money   entity.Money
	ins     instrument.Instrumentation
}

func NewRenderer(company entity.Company, money entity.Money, ins instrument.Instrumentation) *Renderer {
	return &Renderer{company: company, money: money, ins: ins}
}

// Render returns the PDF bytes for order. A panic inside the PDF backend is
// returned as an error.
func (r *Renderer) Render(ctx context.Context, order entity.Order, issuedAt time.Time) (out []byte, err error) {
	_, span := r.ins.Tracer("invoice.outbound.pdf").Start(ctx, "Render")
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("pdf: render panic: %v", rec)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	doc := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitMillimeter, fpdf.PageSizeA4, "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin+10)
	doc.SetCreationDate(issuedAt)
	doc.SetModificationDate(issuedAt)
	doc.SetTitle("Invoice "+order.Number(), true)
	doc.SetAuthor(r.company.Name, true)
	doc.SetCreator("shopauth", true)
	doc.SetCatalogSort(true)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetFooterFunc(func() { r.footer(doc, tr) })

	doc.AddPage()
	r.header(doc, tr)
	r.metadata(doc, tr, order, issuedAt)
	r.customer(doc, tr, order)
	r.items(doc, tr, order)
	r.details(doc, tr, order)

	if doc.Err() {
		return nil, doc.Error()
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *Renderer) header(doc *fpdf.Fpdf, tr func(string) string) {
	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(33, 37, 41)
	doc.CellFormat(0, 10, tr(r.company.Name), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(108, 117, 125)
	for _, line := range []string{r.company.Address, r.company.Phone, r.company.Email} {
		if line != "" {
			doc.CellFormat(0, 4.5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	doc.Ln(4)
	w, _ := doc.GetPageSize()
	doc.SetDrawColor(222, 226, 230)
	doc.Line(pageMargin, doc.GetY(), w-pageMargin, doc.GetY())
	doc.Ln(6)
}

func (r *Renderer) metadata(doc *fpdf.Fpdf, tr func(string) string, order entity.Order, issuedAt time.Time) {
	doc.SetTextColor(33, 37, 41)
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 8, "INVOICE", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	r.pair(doc, tr, "Invoice No.", order.Number())
	r.pair(doc, tr, "Date", issuedAt.Format("02 January 2006"))
	r.pair(doc, tr, "Order ID", order.ID)
	doc.Ln(4)
}

func (r *Renderer) customer(doc *fpdf.Fpdf, tr func(string) string, order entity.Order) {
	r.section(doc, "Bill To")

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, lineHeight, tr(order.CustomerName), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	if order.CustomerAddress != "" {
		doc.MultiCell(0, 5, tr(order.CustomerAddress), "", "L", false)
	}
	for _, line := range []string{order.CustomerPhone, order.CustomerEmail} {
		if line != "" {
			doc.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	doc.Ln(4)
}

func (r *Renderer) items(doc *fpdf.Fpdf, tr func(string) string, order entity.Order) {
	w, _ := doc.GetPageSize()
	content := w - 2*pageMargin
	cols := []float64{content * 0.46, content * 0.12, content * 0.21, content * 0.21}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(52, 58, 64)
	doc.SetTextColor(255, 255, 255)
	for i, head := range []string{"Product", "Qty", "Unit Price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(cols[i], 8, head, "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(33, 37, 41)
	row := []string{
		order.ProductType,
		strconv.Itoa(order.Quantity),
		r.money.Format(order.UnitPrice),
		r.money.Format(int64(order.Quantity) * order.UnitPrice),
	}
	for i, cell := range row {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(cols[i], 8, tr(cell), "1", 0, align, false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(241, 243, 245)
	doc.CellFormat(cols[0]+cols[1]+cols[2], 9, "TOTAL", "1", 0, "R", true, 0, "")
	doc.CellFormat(cols[3], 9, tr(r.money.Format(order.LineTotal())), "1", 1, "R", true, 0, "")
	doc.Ln(6)
}

func (r *Renderer) details(doc *fpdf.Fpdf, tr func(string) string, order entity.Order) {
	r.section(doc, "Payment & Installation")

	doc.SetFont("Helvetica", "", 10)
	r.pair(doc, tr, "Payment Method", order.PaymentMethod)
	r.pair(doc, tr, "Installation Date", order.InstallationDate)
}

func (r *Renderer) footer(doc *fpdf.Fpdf, tr func(string) string) {
	doc.SetY(-(pageMargin + 5))
	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(108, 117, 125)
	doc.CellFormat(0, 4, tr("Thank you for shopping with "+r.company.Name+"."), "", 1, "C", false, 0, "")
	doc.CellFormat(0, 4, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
}

func (r *Renderer) section(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(73, 80, 87)
	doc.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	doc.SetTextColor(33, 37, 41)
	doc.Ln(1)
}

func (r *Renderer) pair(doc *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		value = "-"
	}
	doc.CellFormat(40, lineHeight, tr(label), "", 0, "L", false, 0, "")
	doc.CellFormat(0, lineHeight, tr(": "+value), "", 1, "L", false, 0, "")
}
