package services

import (
	"context"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/types"
)

// PurchaseRepository defines persistence operations for purchases.
type PurchaseRepository interface {
	List(ctx context.Context) ([]types.Purchase, error)
	Create(ctx context.Context, p types.Purchase) (types.Purchase, error)
}

// CreatePurchaseInput carries the caller-supplied fields for a new
// purchase request.
type CreatePurchaseInput struct {
	AssetType    string
	Quantity     int
	PurchaseDate string
	Supplier     string
	Base         string
	UnitCost     float64
}

// PurchaseService encapsulates purchase use-cases.
type PurchaseService struct {
	repo   PurchaseRepository
	events *EventPublisher
}

func NewPurchaseService(repo PurchaseRepository, events *EventPublisher) *PurchaseService {
	return &PurchaseService{repo: repo, events: events}
}

// List returns the purchases visible to user that pass q, newest first.
func (s *PurchaseService) List(ctx context.Context, user types.User, q scope.Query) ([]types.Purchase, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Purchases(user, records, q), nil
}

// Create records a purchase request on behalf of user. Non-admin callers
// always record against their own base; status starts pending.
func (s *PurchaseService) Create(ctx context.Context, user types.User, input CreatePurchaseInput) (types.Purchase, error) {
	base := input.Base
	if user.Role != types.RoleAdmin || base == "" {
		base = user.BaseName
	}

	purchase, err := s.repo.Create(ctx, types.Purchase{
		AssetType:    input.AssetType,
		Quantity:     input.Quantity,
		PurchaseDate: input.PurchaseDate,
		Supplier:     input.Supplier,
		Base:         base,
		UnitCost:     input.UnitCost,
		TotalCost:    float64(input.Quantity) * input.UnitCost,
		Status:       types.PurchaseStatusPending,
		RequestedBy:  user.FullName(),
	})
	if err != nil {
		return types.Purchase{}, err
	}

	s.events.Publish(ctx, AssetEvent{
		Kind:      "purchase",
		ID:        purchase.ID,
		Base:      purchase.Base,
		AssetType: purchase.AssetType,
		Quantity:  purchase.Quantity,
	})
	return purchase, nil
}
