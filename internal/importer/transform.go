package importer

import (
	"strconv"
	"strings"

	"orderbridge/internal/lyra"
)

// Transform maps one shipment row to the nested submission shape of the
// Lyra order API.
//
// An EAN absent from productIDs leaves product_id null instead of failing
// the row; the caller refreshes the catalog before every batch, so a null
// here means the product genuinely is not in the catalog right now.
//
// Non-numeric quantity or cost price coerce to zero rather than failing
// the row.
func Transform(row CsvOrderRow, productIDs map[string]int64, fulfilmentClientID int64) lyra.OrderSubmission {
	first := strings.TrimSpace(row.CustomerFirstname)
	last := strings.TrimSpace(row.CustomerLastname)
	fullName := strings.TrimSpace(first + " " + last)

	var productID *int64
	if id, ok := productIDs[row.EAN]; ok {
		productID = &id
	}

	quantity := coerceNumber(row.Quantity)
	unitPrice := coerceNumber(row.CostPrice)

	return lyra.OrderSubmission{
		Order: lyra.SubmittedOrder{
			ID: strings.TrimSpace(row.OrderID),
			ShippingAddress: lyra.ShippingAddress{
				FullName: fullName,
				AddressLine1: joinAddressLine1(
					row.ShippingAddressStreet,
					row.ShippingAddressNumber,
					row.ShippingAddressNumberAddition,
				),
				PostalCode: strings.TrimSpace(row.ShippingAddressPostcode),
				City:       strings.TrimSpace(row.ShippingAddressCity),
				Country:    strings.ToUpper(strings.TrimSpace(row.ShippingAddressCountry)),
			},
			Email:          strings.TrimSpace(row.CustomerEmail),
			BillingAddress: nil,
			Products: []lyra.OrderLine{
				{
					Product: lyra.ProductRef{
						FulfilmentClientID:   fulfilmentClientID,
						SKU:                  strings.TrimSpace(row.SKU),
						ExpectedShippingDate: strings.TrimSpace(row.ExpectedShippingDate),
						ShippedAt:            strings.TrimSpace(row.ShippingDate),
					},
					Amount: quantity,
					// One stable shape for operational metadata: a flat
					// list of human-readable strings. Downstream
					// consumers rely on this staying a list.
					AdditionalInformation: []string{
						"Qty Shipped: " + row.QtyShipped,
						"Shipper: " + row.Shipper,
						"Track And Trace Code: " + row.TrackAndTraceCode,
						"Track And Trace Url: " + row.TrackAndTraceURL,
						"EAN: " + row.EAN,
					},
					UnitPrice: unitPrice,
					PaidTotal: unitPrice * quantity,
					ProductID: productID,
				},
			},
			OrderedAt: strings.TrimSpace(row.OrderDate),
		},
	}
}

// joinAddressLine1 builds a postal address line from street, house number
// and number addition: each trimmed, empties skipped, joined by single
// spaces.
func joinAddressLine1(street, number, addition string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{street, number, addition} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// coerceNumber parses a CSV numeric field, yielding 0 for anything that is
// not a plain number.
func coerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
