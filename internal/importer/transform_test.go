package importer

import (
	"testing"
)

func TestJoinAddressLine1(t *testing.T) {
	tests := []struct {
		name                      string
		street, number, addition  string
		want                      string
	}{
		{"street and number", "Main", "12", "", "Main 12"},
		{"all three", "Main", "12", "B", "Main 12 B"},
		{"all empty", "", "", "", ""},
		{"whitespace trimmed", "  Main  ", " 12 ", "", "Main 12"},
		{"middle empty", "Main", "", "B", "Main B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := joinAddressLine1(tt.street, tt.number, tt.addition)
			if got != tt.want {
				t.Errorf("joinAddressLine1(%q, %q, %q) = %q, want %q",
					tt.street, tt.number, tt.addition, got, tt.want)
			}
		})
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"3", 3},
		{"9.95", 9.95},
		{" 2 ", 2},
		{"", 0},
		{"abc", 0},
		{"3,50", 0},
	}

	for _, tt := range tests {
		if got := coerceNumber(tt.input); got != tt.want {
			t.Errorf("coerceNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTransform_PaidTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		costPrice string
		want      float64
	}{
		{"numeric", "3", "9.95", 29.849999999999998},
		{"non-numeric quantity", "three", "9.95", 0},
		{"non-numeric price", "3", "cheap", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Transform(CsvOrderRow{Quantity: tt.quantity, CostPrice: tt.costPrice}, nil, 105)
			line := sub.Order.Products[0]
			if line.PaidTotal != tt.want {
				t.Errorf("PaidTotal = %v, want %v", line.PaidTotal, tt.want)
			}
			if line.PaidTotal != line.UnitPrice*line.Amount {
				t.Errorf("PaidTotal = %v, want UnitPrice*Amount = %v",
					line.PaidTotal, line.UnitPrice*line.Amount)
			}
		})
	}
}

func TestTransform_ProductIDResolution(t *testing.T) {
	products := map[string]int64{"EAN1": 501}

	sub := Transform(CsvOrderRow{EAN: "EAN1"}, products, 105)
	pid := sub.Order.Products[0].ProductID
	if pid == nil || *pid != 501 {
		t.Errorf("ProductID = %v, want 501", pid)
	}

	sub = Transform(CsvOrderRow{EAN: "EANX"}, products, 105)
	if sub.Order.Products[0].ProductID != nil {
		t.Errorf("ProductID = %v, want nil for unknown EAN", *sub.Order.Products[0].ProductID)
	}
}

func TestTransform_AddressAndName(t *testing.T) {
	sub := Transform(CsvOrderRow{
		CustomerFirstname:             " Ada ",
		CustomerLastname:              " Lovelace ",
		ShippingAddressStreet:         "Main",
		ShippingAddressNumber:         "12",
		ShippingAddressNumberAddition: "",
		ShippingAddressPostcode:       " 1234AB ",
		ShippingAddressCity:           "Amsterdam",
		ShippingAddressCountry:        "nl",
	}, nil, 105)

	addr := sub.Order.ShippingAddress
	if addr.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want %q", addr.FullName, "Ada Lovelace")
	}
	if addr.AddressLine1 != "Main 12" {
		t.Errorf("AddressLine1 = %q, want %q", addr.AddressLine1, "Main 12")
	}
	if addr.PostalCode != "1234AB" {
		t.Errorf("PostalCode = %q, want %q", addr.PostalCode, "1234AB")
	}
	if addr.Country != "NL" {
		t.Errorf("Country = %q, want %q (uppercased)", addr.Country, "NL")
	}
}

func TestTransform_NameWithMissingParts(t *testing.T) {
	sub := Transform(CsvOrderRow{CustomerFirstname: "Ada"}, nil, 105)
	if got := sub.Order.ShippingAddress.FullName; got != "Ada" {
		t.Errorf("FullName = %q, want %q", got, "Ada")
	}

	sub = Transform(CsvOrderRow{}, nil, 105)
	if got := sub.Order.ShippingAddress.FullName; got != "" {
		t.Errorf("FullName = %q, want empty", got)
	}
}

func TestTransform_AdditionalInformationShape(t *testing.T) {
	sub := Transform(CsvOrderRow{
		QtyShipped:        "2",
		Shipper:           "PostNL",
		TrackAndTraceCode: "3S123",
		TrackAndTraceURL:  "https://t.example/3S123",
		EAN:               "871",
	}, nil, 105)

	want := []string{
		"Qty Shipped: 2",
		"Shipper: PostNL",
		"Track And Trace Code: 3S123",
		"Track And Trace Url: https://t.example/3S123",
		"EAN: 871",
	}
	got := sub.Order.Products[0].AdditionalInformation
	if len(got) != len(want) {
		t.Fatalf("AdditionalInformation has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AdditionalInformation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTransform_FulfilmentClientID(t *testing.T) {
	sub := Transform(CsvOrderRow{SKU: "S"}, nil, 42)
	if got := sub.Order.Products[0].Product.FulfilmentClientID; got != 42 {
		t.Errorf("FulfilmentClientID = %d, want 42", got)
	}
}
