package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/internal/storage"
	"github.com/mams-ops/apiserver/types"
)

// ErrExportsDisabled is returned when no object-storage backend is
// configured for report exports.
var ErrExportsDisabled = errors.New("report exports are disabled")

// MovementSummary aggregates the asset movements visible to a profile.
type MovementSummary struct {
	Base         string `json:"base"`
	Purchases    int    `json:"purchases"`
	TransfersIn  int    `json:"transfers_in"`
	TransfersOut int    `json:"transfers_out"`
	Assigned     int    `json:"assigned"`
	Expended     int    `json:"expended"`
	NetMovement  int    `json:"net_movement"`
}

// ReportService aggregates the four ledgers into summaries and archives
// CSV exports to object storage.
type ReportService struct {
	purchases    PurchaseRepository
	transfers    TransferRepository
	assignments  AssignmentRepository
	expenditures ExpenditureRepository
	archive      *storage.Storage
}

func NewReportService(
	purchases PurchaseRepository,
	transfers TransferRepository,
	assignments AssignmentRepository,
	expenditures ExpenditureRepository,
	archive *storage.Storage,
) *ReportService {
	return &ReportService{
		purchases:    purchases,
		transfers:    transfers,
		assignments:  assignments,
		expenditures: expenditures,
		archive:      archive,
	}
}

// Summary computes movement totals over the records visible to user.
// For admins, base optionally narrows to a single base; scoped roles are
// always summarized at their own base. Transfer direction is counted
// relative to that base; with no base narrowing, transfers move between
// bases and cancel out.
func (s *ReportService) Summary(ctx context.Context, user types.User, base string) (MovementSummary, error) {
	if user.Role != types.RoleAdmin {
		base = user.BaseName
	}
	if base == "all" {
		base = ""
	}
	q := scope.Query{Base: base}

	summary := MovementSummary{Base: base}

	purchases, err := s.purchases.List(ctx)
	if err != nil {
		return MovementSummary{}, err
	}
	for _, p := range scope.Purchases(user, purchases, q) {
		summary.Purchases += p.Quantity
	}

	transfers, err := s.transfers.List(ctx)
	if err != nil {
		return MovementSummary{}, err
	}
	// Direction is counted relative to the summarized base. With no base
	// to count against, transfers move between bases and cancel out.
	for _, t := range scope.Transfers(user, transfers, q) {
		if base == "" {
			continue
		}
		if t.ToBase == base {
			summary.TransfersIn += t.Quantity
		}
		if t.FromBase == base {
			summary.TransfersOut += t.Quantity
		}
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return MovementSummary{}, err
	}
	for _, a := range scope.Assignments(user, assignments, q) {
		summary.Assigned += a.Quantity
	}

	expenditures, err := s.expenditures.List(ctx)
	if err != nil {
		return MovementSummary{}, err
	}
	for _, e := range scope.Expenditures(user, expenditures, q) {
		summary.Expended += e.Quantity
	}

	summary.NetMovement = summary.Purchases + summary.TransfersIn - summary.TransfersOut
	return summary, nil
}

// Export writes a CSV of every ledger entry visible to user and archives
// it in object storage, returning the object key.
func (s *ReportService) Export(ctx context.Context, user types.User) (string, error) {
	if s.archive == nil {
		return "", ErrExportsDisabled
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"kind", "id", "asset_type", "quantity", "base", "date", "counterparty", "status"})

	purchases, err := s.purchases.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range scope.Purchases(user, purchases, scope.Query{}) {
		_ = w.Write([]string{"purchase", p.ID, p.AssetType, strconv.Itoa(p.Quantity), p.Base, p.PurchaseDate, p.Supplier, string(p.Status)})
	}

	transfers, err := s.transfers.List(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range scope.Transfers(user, transfers, scope.Query{}) {
		_ = w.Write([]string{"transfer", t.ID, t.AssetType, strconv.Itoa(t.Quantity), t.FromBase, t.TransferDate, t.ToBase, string(t.Status)})
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range scope.Assignments(user, assignments, scope.Query{}) {
		_ = w.Write([]string{"assignment", a.ID, a.AssetType, strconv.Itoa(a.Quantity), a.Base, a.AssignmentDate, a.AssignedTo, string(a.Status)})
	}

	expenditures, err := s.expenditures.List(ctx)
	if err != nil {
		return "", err
	}
	for _, e := range scope.Expenditures(user, expenditures, scope.Query{}) {
		_ = w.Write([]string{"expenditure", e.ID, e.AssetType, strconv.Itoa(e.Quantity), e.Base, e.ExpenditureDate, e.ExpendedBy, ""})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/%s-%d.csv", time.Now().UTC().Format("20060102T150405"), user.ID)
	if err := s.archive.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

// Fetch opens an archived export for download. The caller owns the
// returned reader and must close it.
func (s *ReportService) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, ErrExportsDisabled
	}
	return s.archive.Get(ctx, key)
}

// Discard removes an archived export from object storage.
func (s *ReportService) Discard(ctx context.Context, key string) error {
	if s.archive == nil {
		return ErrExportsDisabled
	}
	return s.archive.Delete(ctx, key)
}
