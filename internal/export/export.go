// Package export streams filtered order listings from the Lyra API as CSV.
//
// The response is committed in two phases: once the BOM and header row are
// written the stream cannot be retracted, so everything after that is
// best-effort row emission. A failure mid-export terminates the stream and
// the client receives a truncated CSV; no error payload is injected into an
// already-started body.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"net/url"
	"strconv"

	"orderbridge/internal/logging"
	"orderbridge/internal/lyra"
	"orderbridge/internal/metrics"
)

// Header is the fixed column set of an export, one row per line item.
var Header = []string{
	"order_uuid",
	"order_reference",
	"status",
	"ordered_at",
	"paid_at",
	"payment_method",
	"customer_name",
	"ship_fullname",
	"ship_address_line_1",
	"ship_postal_code",
	"ship_city",
	"ship_state",
	"ship_country",
	"shipment_barcode",
	"track_and_trace_url",
	"shipped_at",
	"line_item_uuid",
	"line_item_title",
	"line_item_foreign_id",
	"amount",
	"unit_price",
	"paid_total",
	"paid_tax",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OrderLister fetches one page of the upstream order listing.
type OrderLister interface {
	ListOrders(ctx context.Context, query url.Values) (*lyra.OrdersPage, error)
}

// Driver iterates the upstream order listing page by page and streams
// matching rows as CSV. Page fetches are strictly sequential: each page's
// pagination state depends on the previous response.
type Driver struct {
	Client OrderLister

	// MaxPages caps page fetches per export so the driver terminates
	// even against cyclic or inconsistent pagination signals.
	MaxPages int

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Run streams the export for q into w. Rows are flushed per upstream page,
// so memory stays bounded by one page regardless of export size. A write
// failure (client gone) stops further page fetches.
func (d *Driver) Run(ctx context.Context, w io.Writer, q Query) error {
	log := logging.FromContext(ctx)

	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	var (
		page    = 1
		cursor  = ""
		fetched = 0
		emitted = 0
	)

	for fetched < d.MaxPages {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := d.Client.ListOrders(ctx, q.upstreamParams(page, cursor))
		if err != nil {
			return err
		}
		fetched++
		if d.Metrics != nil {
			d.Metrics.ExportPages.Inc()
		}

		for i := range resp.Orders {
			order := &resp.Orders[i]
			if !q.InRange(order.OrderedAt) {
				continue
			}
			for _, row := range orderRows(order) {
				if err := cw.Write(row); err != nil {
					return err
				}
				emitted++
			}
		}

		// Flush before deciding on the next fetch: a dead client is
		// detected here and stops the upstream iteration.
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if d.Metrics != nil {
			d.Metrics.ExportRows.Add(float64(emitted))
			emitted = 0
		}

		adv := Resolve(resp, page, q.PerPage)
		if !adv.More {
			log.Debug("export finished",
				"pages", fetched,
				"strategy", adv.Strategy.String(),
			)
			return nil
		}
		cursor = adv.Cursor
		page = adv.NextPage
	}

	log.Warn("export stopped at page cap", "pages", fetched)
	return nil
}

// orderRows flattens one order to CSV rows, one per line item. An order
// without line items still gets a single row with the line-item columns
// blank, so it is visible in the export.
func orderRows(o *lyra.Order) [][]string {
	base := []string{
		o.UUID,
		o.Reference,
		o.Status,
		o.OrderedAt,
		o.PaidAt,
		o.PaymentMethod,
		o.CustomerName,
		o.ShippingAddress.FullName,
		o.ShippingAddress.AddressLine1,
		o.ShippingAddress.PostalCode,
		o.ShippingAddress.City,
		o.ShippingAddress.State,
		o.ShippingAddress.Country,
		o.ShipmentBarcode,
		o.TrackAndTraceURL,
		o.ShippedAt,
	}

	if len(o.LineItems) == 0 {
		row := make([]string, len(Header))
		copy(row, base)
		return [][]string{row}
	}

	rows := make([][]string, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		row := make([]string, 0, len(Header))
		row = append(row, base...)
		row = append(row,
			item.UUID,
			item.Title,
			item.ForeignID,
			formatAmount(item.Amount),
			formatAmount(item.UnitPrice),
			formatAmount(item.PaidTotal),
			formatAmount(item.PaidTax),
		)
		rows = append(rows, row)
	}
	return rows
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
