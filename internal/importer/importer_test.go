package importer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"orderbridge/internal/lyra"
	"orderbridge/internal/mapping"
)

type fakeSubmitter struct {
	subs    []lyra.OrderSubmission
	failFor map[string]bool // order id -> fail
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, sub lyra.OrderSubmission) (json.RawMessage, error) {
	f.subs = append(f.subs, sub)
	if f.failFor[sub.Order.ID] {
		return nil, &lyra.UpstreamError{Status: 422, Body: "rejected"}
	}
	return json.RawMessage(`{"ok":true}`), nil
}

type fakeCatalog struct {
	freshCalls int
	products   map[string]int64
	err        error
}

func (f *fakeCatalog) Map(ctx context.Context, fresh bool) (map[string]int64, error) {
	if fresh {
		f.freshCalls++
	}
	return f.products, f.err
}

func writeUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const uploadHeader = "orderId;orderDate;EAN;quantity;costPrice\n"

func newTestImporter(sub *fakeSubmitter, cat *fakeCatalog) *Importer {
	return New(sub, cat, mapping.Default(), 105, nil)
}

func TestImporter_SubmitsRowsInOrder(t *testing.T) {
	sub := &fakeSubmitter{}
	cat := &fakeCatalog{products: map[string]int64{"E1": 501}}
	im := newTestImporter(sub, cat)

	path := writeUpload(t, uploadHeader+"A-1;2024-03-01;E1;2;9.95\nA-2;2024-03-02;E2;1;5\n")
	result, err := im.Run(context.Background(), path, "upload.csv")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Total != 2 || result.Submitted != 2 || result.Failed != 0 {
		t.Errorf("result = total %d, submitted %d, failed %d", result.Total, result.Submitted, result.Failed)
	}
	if len(sub.subs) != 2 {
		t.Fatalf("submitted %d orders, want 2", len(sub.subs))
	}
	if sub.subs[0].Order.ID != "A-1" || sub.subs[1].Order.ID != "A-2" {
		t.Errorf("submission order = %q, %q", sub.subs[0].Order.ID, sub.subs[1].Order.ID)
	}

	// Resolved vs unresolved product ids.
	if pid := sub.subs[0].Order.Products[0].ProductID; pid == nil || *pid != 501 {
		t.Errorf("first row ProductID = %v, want 501", pid)
	}
	if pid := sub.subs[1].Order.Products[0].ProductID; pid != nil {
		t.Errorf("second row ProductID = %v, want nil", *pid)
	}
}

func TestImporter_ForcesFreshCatalogPerBatch(t *testing.T) {
	cat := &fakeCatalog{products: map[string]int64{}}
	im := newTestImporter(&fakeSubmitter{}, cat)

	path := writeUpload(t, uploadHeader+"A-1;2024-03-01;E1;1;1\n")
	if _, err := im.Run(context.Background(), path, "upload.csv"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if cat.freshCalls != 1 {
		t.Errorf("fresh catalog fetches = %d, want 1", cat.freshCalls)
	}
}

func TestImporter_ContinuesAfterFailedRow(t *testing.T) {
	sub := &fakeSubmitter{failFor: map[string]bool{"A-2": true}}
	cat := &fakeCatalog{products: map[string]int64{}}
	im := newTestImporter(sub, cat)

	path := writeUpload(t, uploadHeader+"A-1;d;E;1;1\nA-2;d;E;1;1\nA-3;d;E;1;1\n")
	result, err := im.Run(context.Background(), path, "upload.csv")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Submitted != 2 || result.Failed != 1 {
		t.Errorf("submitted %d, failed %d; want 2, 1", result.Submitted, result.Failed)
	}
	if len(sub.subs) != 3 {
		t.Errorf("submissions = %d, want 3 (batch continues past a failure)", len(sub.subs))
	}

	if result.Rows[1].Status != RowFailed || result.Rows[1].OrderID != "A-2" {
		t.Errorf("rows[1] = %+v, want failed A-2", result.Rows[1])
	}
	if result.Rows[1].Error == "" {
		t.Error("failed row is missing its error message")
	}
	if result.Rows[2].Status != RowSubmitted {
		t.Errorf("rows[2].Status = %q, want %q", result.Rows[2].Status, RowSubmitted)
	}
}

func TestImporter_CatalogFailureAbortsBeforeSubmitting(t *testing.T) {
	sub := &fakeSubmitter{}
	cat := &fakeCatalog{err: errors.New("catalog down")}
	im := newTestImporter(sub, cat)

	path := writeUpload(t, uploadHeader+"A-1;d;E;1;1\n")
	if _, err := im.Run(context.Background(), path, "upload.csv"); err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if len(sub.subs) != 0 {
		t.Errorf("submitted %d orders despite catalog failure", len(sub.subs))
	}
}

func TestImporter_SkipsBlankRows(t *testing.T) {
	sub := &fakeSubmitter{}
	cat := &fakeCatalog{products: map[string]int64{}}
	im := newTestImporter(sub, cat)

	path := writeUpload(t, uploadHeader+"A-1;d;E;1;1\n;;;;\n")
	result, err := im.Run(context.Background(), path, "upload.csv")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1 (blank filler row skipped)", result.Total)
	}
}

func TestImporter_CancelledContextAborts(t *testing.T) {
	sub := &fakeSubmitter{}
	cat := &fakeCatalog{products: map[string]int64{}}
	im := newTestImporter(sub, cat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeUpload(t, uploadHeader+"A-1;d;E;1;1\n")
	result, err := im.Run(ctx, path, "upload.csv")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("Run() should return the partial result alongside the error")
	}
}
