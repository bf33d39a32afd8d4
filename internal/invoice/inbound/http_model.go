package inbound

const HeaderInvoiceURL = "X-Invoice-URL"

type GenerateRequest struct {
	ID               string `json:"id"`
	CustomerName     string `json:"customerName"`
	CustomerAddress  string `json:"customerAddress"`
	CustomerPhone    string `json:"customerPhone"`
	CustomerEmail    string `json:"customerEmail"`
	ProductType      string `json:"productType"`
	Quantity         int    `json:"quantity"`
	UnitPrice        int64  `json:"unitPrice"`
	Total            int64  `json:"total"`
	PaymentMethod    string `json:"paymentMethod"`
	InstallationDate string `json:"installationDate"`
}
