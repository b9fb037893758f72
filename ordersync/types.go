package ordersync

// Source names for sync runs. Each maps to one extractor feeding this
// coordinator (browser automation and PDF parsing live outside this repo).
const (
	SourceOrders   = "orders"
	SourceDdt      = "ddt"
	SourceInvoices = "invoices"
)

// SyncPayload is what an extractor delivers for one pass: raw order rows with
// their line items, DDT and invoice enrichment rows, and the authoritative
// key set for deletion reconciliation (nil/empty skips reconciliation by way
// of the store's empty-set guard).
type SyncPayload struct {
	Orders            []OrderRow    `json:"orders" validate:"dive"`
	Shipments         []ShipmentRow `json:"shipments" validate:"dive"`
	Invoices          []InvoiceRow  `json:"invoices" validate:"dive"`
	AuthoritativeKeys []string      `json:"authoritative_keys"`
}

// OrderRow carries one order as extracted upstream. Dates and amounts arrive
// as raw strings (the gestionale formats them the Italian way) and are parsed
// at this boundary; the typed record never sees the wire shape.
type OrderRow struct {
	ID              int       `json:"id" validate:"required,gt=0"`
	OrderNumber     string    `json:"order_number" validate:"required"`
	CustomerCode    string    `json:"customer_code"`
	CustomerName    string    `json:"customer_name"`
	DeliveryName    string    `json:"delivery_name"`
	DeliveryAddress string    `json:"delivery_address"`
	Reference       string    `json:"reference"`
	OrderDate       string    `json:"order_date"`
	Status          string    `json:"status"`
	DeliveryStatus  string    `json:"delivery_status"`
	InvoiceStatus   string    `json:"invoice_status"`
	TotalAmount     string    `json:"total_amount"`
	TotalTaxAmount  string    `json:"total_tax_amount"`
	TotalWithTax    string    `json:"total_with_tax"`
	ForwardedAt     string    `json:"forwarded_at"`
	ExternalRef     string    `json:"external_ref"`
	Items           []ItemRow `json:"items" validate:"dive"`
}

type ItemRow struct {
	ArticleCode       string `json:"article_code" validate:"required"`
	Description       string `json:"description"`
	Quantity          string `json:"quantity"`
	UnitPrice         string `json:"unit_price"`
	Discount          string `json:"discount"`
	LineAmount        string `json:"line_amount"`
	VatRate           string `json:"vat_rate"`
	VatAmount         string `json:"vat_amount"`
	LineAmountWithVat string `json:"line_amount_with_vat"`
	WarehouseCode     string `json:"warehouse_code"`
	WarehouseRow      string `json:"warehouse_row"`
}

// ShipmentRow is one DDT row keyed by internal order id.
type ShipmentRow struct {
	OrderId        int    `json:"order_id" validate:"required,gt=0"`
	DdtNumber      string `json:"ddt_number" validate:"required"`
	DdtDate        string `json:"ddt_date"`
	DeliveryDate   string `json:"delivery_date"`
	TrackingNumber string `json:"tracking_number"`
	Courier        string `json:"courier"`
	ShipToName     string `json:"ship_to_name"`
	ShipToAddress  string `json:"ship_to_address"`
}

// InvoiceRow is one invoice row keyed by internal order id.
type InvoiceRow struct {
	OrderId            int    `json:"order_id" validate:"required,gt=0"`
	InvoiceNumber      string `json:"invoice_number" validate:"required"`
	InvoiceDate        string `json:"invoice_date"`
	InvoiceAmount      string `json:"invoice_amount"`
	InvoiceDueDate     string `json:"invoice_due_date"`
	InvoiceSettledDate string `json:"invoice_settled_date"`
	InvoiceClosed      bool   `json:"invoice_closed"`
}

// PassStats summarizes one pass for the SyncRun row.
type PassStats struct {
	RecordsSynced int
	ErrorCount    int
	DeletedCount  int
}
