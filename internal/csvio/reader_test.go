package csvio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"commas only", "a,b,c\n1,2,3\n", ','},
		{"semicolons only", "a;b;c\n1;2;3\n", ';'},
		{"mixed prefers semicolon", "a,b;c\n", ';'},
		{"single semicolon anywhere", "a,b,c\n1,2,x;y\n", ';'},
		{"no delimiter at all", "abc\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter([]byte(tt.input)); got != tt.want {
				t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReader_StreamsHeaderKeyedRecords(t *testing.T) {
	r, err := New([]byte("orderId;sku;quantity\nA-1;S-9;2\nA-2;S-8;1\n"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Delimiter() != ';' {
		t.Errorf("Delimiter() = %q, want %q", r.Delimiter(), ';')
	}

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if first["orderId"] != "A-1" || first["sku"] != "S-9" || first["quantity"] != "2" {
		t.Errorf("first record = %v", first)
	}

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last row = %v, want io.EOF", err)
	}
}

func TestReader_ShortRowPassesThrough(t *testing.T) {
	r, err := New([]byte("a,b,c\n1,2\n"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v (short rows must not fail the ingestor)", err)
	}
	if rec["a"] != "1" || rec["b"] != "2" || rec["c"] != "" {
		t.Errorf("record = %v", rec)
	}
}

func TestReader_StripsBOMAndHeaderSpace(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(" orderId ,sku\nX,Y\n")...)
	r, err := New(data)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if rec["orderId"] != "X" {
		t.Errorf(`rec["orderId"] = %q, want "X" (header = %v)`, rec["orderId"], r.Header())
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("Open() on empty file expected error, got nil")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("Open() on missing file expected error, got nil")
	}
}
