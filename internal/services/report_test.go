package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mams-ops/apiserver/internal/storage"
	"github.com/mams-ops/apiserver/internal/store"
)

type captureStorage struct {
	key  string
	data []byte
}

func (c *captureStorage) EnsureBucket(ctx context.Context) error { return nil }

func (c *captureStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.key = key
	c.data = data
	return nil
}

func (c *captureStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key != c.key || c.data == nil {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(c.data)), nil
}

func (c *captureStorage) Delete(ctx context.Context, key string) error {
	if key != c.key {
		return fmt.Errorf("object %s not found", key)
	}
	c.key, c.data = "", nil
	return nil
}

func (c *captureStorage) Bucket() string { return "test-bucket" }

func newReportService(archive *storage.Storage) *ReportService {
	return NewReportService(
		store.NewMemoryPurchaseRepository(),
		store.NewMemoryTransferRepository(),
		store.NewMemoryAssignmentRepository(),
		store.NewMemoryExpenditureRepository(),
		archive,
	)
}

func TestSummaryForScopedRole(t *testing.T) {
	svc := newReportService(nil)

	// The base argument is ignored for scoped roles.
	summary, err := svc.Summary(context.Background(), testCommander, "Camp Pendleton")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Base != "Fort Liberty" {
		t.Fatalf("base = %s, want Fort Liberty", summary.Base)
	}
	if summary.Purchases != 150 {
		t.Fatalf("purchases = %d, want 150", summary.Purchases)
	}
	if summary.TransfersIn != 3 || summary.TransfersOut != 15 {
		t.Fatalf("transfers in/out = %d/%d, want 3/15", summary.TransfersIn, summary.TransfersOut)
	}
	if summary.Assigned != 26 {
		t.Fatalf("assigned = %d, want 26", summary.Assigned)
	}
	if summary.Expended != 1000 {
		t.Fatalf("expended = %d, want 1000", summary.Expended)
	}
	if summary.NetMovement != 138 {
		t.Fatalf("net movement = %d, want 138", summary.NetMovement)
	}
}

func TestSummaryAdminNarrowedToBase(t *testing.T) {
	svc := newReportService(nil)

	summary, err := svc.Summary(context.Background(), testAdmin, "Camp Pendleton")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Purchases != 25 {
		t.Fatalf("purchases = %d, want 25", summary.Purchases)
	}
	if summary.TransfersIn != 0 || summary.TransfersOut != 3 {
		t.Fatalf("transfers in/out = %d/%d, want 0/3", summary.TransfersIn, summary.TransfersOut)
	}
	if summary.NetMovement != 22 {
		t.Fatalf("net movement = %d, want 22", summary.NetMovement)
	}
}

func TestSummaryAdminAcrossAllBases(t *testing.T) {
	svc := newReportService(nil)

	summary, err := svc.Summary(context.Background(), testAdmin, "all")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Base != "" {
		t.Fatalf("base = %q, want empty for all bases", summary.Base)
	}
	if summary.Purchases != 175 {
		t.Fatalf("purchases = %d, want 175", summary.Purchases)
	}
	// Transfers between bases cancel out at the global view.
	if summary.TransfersIn != 0 || summary.TransfersOut != 0 {
		t.Fatalf("transfers in/out = %d/%d, want 0/0", summary.TransfersIn, summary.TransfersOut)
	}
}

func TestExportWritesScopedCSV(t *testing.T) {
	capture := &captureStorage{}
	svc := newReportService(storage.NewStorage(capture))

	key, err := svc.Export(context.Background(), testCommander)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if key != capture.key {
		t.Fatalf("returned key %q, stored %q", key, capture.key)
	}
	if !strings.HasPrefix(key, "reports/") || !strings.HasSuffix(key, ".csv") {
		t.Fatalf("key = %q", key)
	}

	rows, err := csv.NewReader(bytes.NewReader(capture.data)).ReadAll()
	if err != nil {
		t.Fatalf("parse exported CSV: %v", err)
	}
	if rows[0][0] != "kind" {
		t.Fatalf("header = %v", rows[0])
	}
	// Commander at Fort Liberty: 2 purchases, 2 transfers, 2 assignments,
	// 1 expenditure, plus the header.
	if len(rows) != 8 {
		t.Fatalf("exported %d rows, want 8", len(rows))
	}
	for _, row := range rows[1:] {
		if row[0] == "purchase" && row[4] != "Fort Liberty" {
			t.Fatalf("out-of-scope purchase row %v", row)
		}
	}
}

func TestFetchAndDiscardArchivedExport(t *testing.T) {
	capture := &captureStorage{}
	svc := newReportService(storage.NewStorage(capture))
	ctx := context.Background()

	key, err := svc.Export(ctx, testCommander)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	object, err := svc.Fetch(ctx, key)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := io.ReadAll(object)
	object.Close()
	if err != nil {
		t.Fatalf("read fetched export: %v", err)
	}
	if !strings.HasPrefix(string(data), "kind,") {
		t.Fatalf("fetched export does not start with the CSV header: %q", data[:20])
	}

	if err := svc.Discard(ctx, key); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := svc.Fetch(ctx, key); err == nil {
		t.Fatal("Fetch succeeded after Discard")
	}
}

func TestExportDisabledWithoutArchive(t *testing.T) {
	svc := newReportService(nil)

	if _, err := svc.Export(context.Background(), testAdmin); !errors.Is(err, ErrExportsDisabled) {
		t.Fatalf("Export err = %v, want ErrExportsDisabled", err)
	}
	if _, err := svc.Fetch(context.Background(), "reports/any.csv"); !errors.Is(err, ErrExportsDisabled) {
		t.Fatalf("Fetch err = %v, want ErrExportsDisabled", err)
	}
	if err := svc.Discard(context.Background(), "reports/any.csv"); !errors.Is(err, ErrExportsDisabled) {
		t.Fatalf("Discard err = %v, want ErrExportsDisabled", err)
	}
}
