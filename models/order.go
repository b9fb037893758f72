package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order mirrors one business order owned by the external order-management
// system. The internal id is assigned at creation and never reused; the order
// number is unique per tenant but mutable exactly once in the expected case
// (PENDING-{id} placeholder -> canonical number assigned upstream).
type Order struct {
	ID          int    `gorm:"primary_key" json:"id"`
	TenantId    string `gorm:"uniqueIndex:idx_orders_tenant_number,priority:1;size:64;not null" json:"tenant_id"`
	OrderNumber string `gorm:"uniqueIndex:idx_orders_tenant_number,priority:2;size:64;not null" json:"order_number"`

	CustomerCode    string     `gorm:"size:64;index" json:"customer_code"`
	CustomerName    string     `gorm:"size:255" json:"customer_name"`
	DeliveryName    string     `gorm:"size:255" json:"delivery_name"`
	DeliveryAddress string     `gorm:"size:512" json:"delivery_address"`
	Reference       string     `gorm:"size:255" json:"reference"`
	OrderDate       *time.Time `json:"order_date"`

	// Status strings are reported by the authoritative system and stored as
	// opaque values; only the state detection engine interprets them.
	Status         string          `gorm:"size:100" json:"status"`
	DeliveryStatus string          `gorm:"size:100" json:"delivery_status"`
	InvoiceStatus  string          `gorm:"size:100" json:"invoice_status"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalTaxAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_tax_amount"`
	TotalWithTax   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_with_tax"`

	// Shipment/DDT enrichment block, populated independently by the DDT sync.
	DdtNumber      string     `gorm:"size:64;index" json:"ddt_number"`
	DdtDate        *time.Time `json:"ddt_date"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	TrackingNumber string     `gorm:"size:100" json:"tracking_number"`
	Courier        string     `gorm:"size:100" json:"courier"`
	ShipToName     string     `gorm:"size:255" json:"ship_to_name"`
	ShipToAddress  string     `gorm:"size:512" json:"ship_to_address"`

	// Invoice enrichment block, populated independently by the invoice sync.
	InvoiceNumber      string          `gorm:"size:64;index" json:"invoice_number"`
	InvoiceDate        *time.Time      `json:"invoice_date"`
	InvoiceAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoice_amount"`
	InvoiceDueDate     *time.Time      `json:"invoice_due_date"`
	InvoiceSettledDate *time.Time      `json:"invoice_settled_date"`
	InvoiceClosed      *bool           `gorm:"not null;default:false" json:"invoice_closed"`

	// Lifecycle metadata. Phase is the cached projection of the latest
	// transition; presence of ExternalRef is itself a lifecycle signal.
	Phase       Phase      `gorm:"size:32;not null;default:'created'" json:"phase"`
	ForwardedAt *time.Time `json:"forwarded_at"`
	ExternalRef string     `gorm:"size:64;index" json:"external_ref"`

	// Sync metadata.
	Fingerprint string     `gorm:"size:64" json:"fingerprint"`
	Version     int        `gorm:"not null;default:0" json:"version"`
	LastSyncAt  *time.Time `json:"last_sync_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Items []OrderLineItem `gorm:"foreignKey:OrderId" json:"items"`
}

// NewOrder is the upsert input delivered by sync jobs after they fetched and
// parsed remote data. The internal id travels with the payload: lookups go by
// id, never by order number, because the number may have just been renumbered.
type NewOrder struct {
	ID              int             `json:"id" validate:"required,gt=0"`
	OrderNumber     string          `json:"order_number" validate:"required"`
	CustomerCode    string          `json:"customer_code"`
	CustomerName    string          `json:"customer_name"`
	DeliveryName    string          `json:"delivery_name"`
	DeliveryAddress string          `json:"delivery_address"`
	Reference       string          `json:"reference"`
	OrderDate       *time.Time      `json:"order_date"`
	Status          string          `json:"status"`
	DeliveryStatus  string          `json:"delivery_status"`
	InvoiceStatus   string          `json:"invoice_status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalTaxAmount  decimal.Decimal `json:"total_tax_amount"`
	TotalWithTax    decimal.Decimal `json:"total_with_tax"`
	ForwardedAt     *time.Time      `json:"forwarded_at"`
	ExternalRef     string          `json:"external_ref"`
}

// ShipmentUpdate carries the DDT enrichment fields. Nil pointers leave the
// stored value untouched.
type ShipmentUpdate struct {
	DdtNumber      *string    `json:"ddt_number"`
	DdtDate        *time.Time `json:"ddt_date"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	TrackingNumber *string    `json:"tracking_number"`
	Courier        *string    `json:"courier"`
	ShipToName     *string    `json:"ship_to_name"`
	ShipToAddress  *string    `json:"ship_to_address"`
}

// InvoiceUpdate carries the invoice enrichment fields.
type InvoiceUpdate struct {
	InvoiceNumber      *string          `json:"invoice_number"`
	InvoiceDate        *time.Time       `json:"invoice_date"`
	InvoiceAmount      *decimal.Decimal `json:"invoice_amount"`
	InvoiceDueDate     *time.Time       `json:"invoice_due_date"`
	InvoiceSettledDate *time.Time       `json:"invoice_settled_date"`
	InvoiceClosed      *bool            `json:"invoice_closed"`
}

type OrdersConnection struct {
	Edges    []*OrdersEdge `json:"edges"`
	PageInfo *PageInfo     `json:"pageInfo"`
}

type OrdersEdge Edge[Order]

func (o Order) GetCursor() string {
	return o.CreatedAt.String()
}

func (o Order) GetId() int {
	return o.ID
}
