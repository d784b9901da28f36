package importer

// CsvOrderRow is one parsed shipment row in canonical field terms. All
// values stay as the raw strings from the upload; coercion happens in the
// transformer.
type CsvOrderRow struct {
	OrderID                       string
	OrderDate                     string
	ShippingDate                  string
	QtyShipped                    string
	Shipper                       string
	TrackAndTraceCode             string
	TrackAndTraceURL              string
	CustomerFirstname             string
	CustomerLastname              string
	ShippingAddressStreet         string
	ShippingAddressNumber         string
	ShippingAddressNumberAddition string
	ShippingAddressPostcode       string
	ShippingAddressCity           string
	ShippingAddressCountry        string
	CustomerEmail                 string
	Telephone                     string
	SKU                           string
	Quantity                      string
	EAN                           string
	CostPrice                     string
	Name                          string
	ExpectedShippingDate          string
}

// RowFromFields builds a CsvOrderRow from canonical field names, as
// produced by a mapping profile's Resolve.
func RowFromFields(fields map[string]string) CsvOrderRow {
	return CsvOrderRow{
		OrderID:                       fields["orderId"],
		OrderDate:                     fields["orderDate"],
		ShippingDate:                  fields["shippingDate"],
		QtyShipped:                    fields["qtyShipped"],
		Shipper:                       fields["shipper"],
		TrackAndTraceCode:             fields["trackAndTraceCode"],
		TrackAndTraceURL:              fields["trackAndTraceUrl"],
		CustomerFirstname:             fields["customerFirstname"],
		CustomerLastname:              fields["customerLastname"],
		ShippingAddressStreet:         fields["shippingAddressStreet"],
		ShippingAddressNumber:         fields["shippingAddressNumber"],
		ShippingAddressNumberAddition: fields["shippingAddressNumberAddition"],
		ShippingAddressPostcode:       fields["shippingAddressPostcode"],
		ShippingAddressCity:           fields["shippingAddressCity"],
		ShippingAddressCountry:        fields["shippingAddressCountry"],
		CustomerEmail:                 fields["customerEmail"],
		Telephone:                     fields["telephone"],
		SKU:                           fields["sku"],
		Quantity:                      fields["quantity"],
		EAN:                           fields["EAN"],
		CostPrice:                     fields["costPrice"],
		Name:                          fields["name"],
		ExpectedShippingDate:          fields["expectedShippingDate"],
	}
}

// empty reports whether every field of the row is blank, which happens for
// filler lines some warehouse exports append.
func (r CsvOrderRow) empty() bool {
	return r == CsvOrderRow{}
}
