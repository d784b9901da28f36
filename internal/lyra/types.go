package lyra

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderSubmission is the nested payload shape for POST /order.
type OrderSubmission struct {
	Order SubmittedOrder `json:"order"`
}

// SubmittedOrder carries the top-level order fields of a submission.
type SubmittedOrder struct {
	ID              string           `json:"id"`
	ShippingAddress ShippingAddress  `json:"shipping_address"`
	Email           string           `json:"email"`
	BillingAddress  *ShippingAddress `json:"billing_address"`
	Products        []OrderLine      `json:"products"`
	OrderedAt       string           `json:"ordered_at"`
}

// ShippingAddress is the address block of a submission.
type ShippingAddress struct {
	FullName     string `json:"fullname"`
	AddressLine1 string `json:"address_line_1"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

// OrderLine is one line-item entry of a submission. ProductID is nil when
// the SKU/EAN could not be resolved against the product catalog; the
// upstream API treats null as "unknown product" rather than rejecting the
// whole order.
type OrderLine struct {
	Product               ProductRef `json:"product"`
	Amount                float64    `json:"amount"`
	AdditionalInformation []string   `json:"additional_information"`
	UnitPrice             float64    `json:"unit_price"`
	PaidTotal             float64    `json:"paid_total"`
	ProductID             *int64     `json:"product_id"`
}

// ProductRef identifies the product of a submitted line.
type ProductRef struct {
	FulfilmentClientID   int64  `json:"fulfilmentclient_id"`
	SKU                  string `json:"sku"`
	ExpectedShippingDate string `json:"expected_shipping_date,omitempty"`
	ShippedAt            string `json:"shipped_at,omitempty"`
}

// Product is one catalog entry returned by GET /products.
type Product struct {
	ID  int64  `json:"id"`
	SKU string `json:"sku"`
}

// Order is one order as returned by GET /orders. Timestamps are kept as the
// raw strings the upstream sent; the export driver parses ordered_at itself
// for the date safety filter.
type Order struct {
	UUID             string       `json:"uuid"`
	Reference        string       `json:"reference"`
	Status           string       `json:"status"`
	OrderedAt        string       `json:"ordered_at"`
	PaidAt           string       `json:"paid_at"`
	PaymentMethod    string       `json:"payment_method"`
	CustomerName     string       `json:"customer_name"`
	ShippingAddress  OrderAddress `json:"shipping_address"`
	ShipmentBarcode  string       `json:"shipment_barcode"`
	TrackAndTraceURL string       `json:"track_and_trace_url"`
	ShippedAt        string       `json:"shipped_at"`
	LineItems        []LineItem   `json:"line_items"`
}

// OrderAddress is the shipping address block of a listed order.
type OrderAddress struct {
	FullName     string `json:"fullname"`
	AddressLine1 string `json:"address_line_1"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// LineItem is one line item of a listed order.
type LineItem struct {
	UUID      string  `json:"uuid"`
	Title     string  `json:"title"`
	ForeignID string  `json:"foreign_id"`
	Amount    float64 `json:"amount"`
	UnitPrice float64 `json:"unit_price"`
	PaidTotal float64 `json:"paid_total"`
	PaidTax   float64 `json:"paid_tax"`
}

// PageMeta is the pagination metadata of an orders page. The upstream API
// is not consistent about where it puts this block or which keys it uses,
// so all observed variants are decoded and accessor methods pick between
// them.
type PageMeta struct {
	NextCursor  string `json:"next_cursor"`
	Cursor      string `json:"cursor"`
	Next        *bool  `json:"next"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	LastPage    int    `json:"last_page"`
}

// CursorToken returns the cursor to carry into the next request, or ""
// when the response carried none.
func (m *PageMeta) CursorToken() string {
	if m.NextCursor != "" {
		return m.NextCursor
	}
	return m.Cursor
}

// PageCount returns the total page count, or 0 when the response carried
// none.
func (m *PageMeta) PageCount() int {
	if m.TotalPages > 0 {
		return m.TotalPages
	}
	return m.LastPage
}

// OrdersPage is one decoded page of GET /orders.
type OrdersPage struct {
	Orders []Order
	Meta   PageMeta
}

// pageEnvelope matches the top level of an orders response. The order list
// may sit under "orders" directly or under "orders.data"; metadata may sit
// under "meta", "orders.meta" or "orders.links".
type pageEnvelope struct {
	Orders json.RawMessage `json:"orders"`
	Meta   *PageMeta       `json:"meta"`
	Data   json.RawMessage `json:"data"`
}

type ordersBlock struct {
	Data  json.RawMessage `json:"data"`
	Meta  *PageMeta       `json:"meta"`
	Links *pageLinks      `json:"links"`
}

type pageLinks struct {
	Next *bool `json:"next"`
}

// DecodeOrdersPage parses an orders listing body, tolerating the known
// layout variants of the upstream API.
func DecodeOrdersPage(body []byte) (*OrdersPage, error) {
	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode orders page: %w", err)
	}

	page := &OrdersPage{}
	if env.Meta != nil {
		page.Meta = *env.Meta
	}

	list := env.Orders
	if len(list) == 0 {
		// Some endpoints skip the "orders" wrapper entirely.
		list = env.Data
	}
	if len(list) == 0 {
		return page, nil
	}

	if bytes.HasPrefix(bytes.TrimLeft(list, " \t\r\n"), []byte("[")) {
		if err := json.Unmarshal(list, &page.Orders); err != nil {
			return nil, fmt.Errorf("decode order list: %w", err)
		}
		return page, nil
	}

	var block ordersBlock
	if err := json.Unmarshal(list, &block); err != nil {
		return nil, fmt.Errorf("decode orders block: %w", err)
	}
	if len(block.Data) > 0 {
		if err := json.Unmarshal(block.Data, &page.Orders); err != nil {
			return nil, fmt.Errorf("decode order list: %w", err)
		}
	}
	// Nested metadata wins over top-level metadata when both exist.
	if block.Meta != nil {
		page.Meta = *block.Meta
	}
	if block.Links != nil && block.Links.Next != nil {
		page.Meta.Next = block.Links.Next
	}

	return page, nil
}
