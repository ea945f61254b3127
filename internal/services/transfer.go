package services

import (
	"context"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/types"
)

// TransferRepository defines persistence operations for transfers.
type TransferRepository interface {
	List(ctx context.Context) ([]types.Transfer, error)
	Create(ctx context.Context, t types.Transfer) (types.Transfer, error)
}

// CreateTransferInput carries the caller-supplied fields for a new
// transfer request.
type CreateTransferInput struct {
	AssetType    string
	Quantity     int
	FromBase     string
	ToBase       string
	TransferDate string
	Notes        string
}

// TransferService encapsulates transfer use-cases.
type TransferService struct {
	repo   TransferRepository
	events *EventPublisher
}

func NewTransferService(repo TransferRepository, events *EventPublisher) *TransferService {
	return &TransferService{repo: repo, events: events}
}

// List returns the transfers visible to user that pass q, newest first.
// A transfer is visible from either of its two bases.
func (s *TransferService) List(ctx context.Context, user types.User, q scope.Query) ([]types.Transfer, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Transfers(user, records, q), nil
}

// Create records a transfer request on behalf of user. Non-admin callers
// always send from their own base; status starts pending.
func (s *TransferService) Create(ctx context.Context, user types.User, input CreateTransferInput) (types.Transfer, error) {
	fromBase := input.FromBase
	if user.Role != types.RoleAdmin || fromBase == "" {
		fromBase = user.BaseName
	}

	transfer, err := s.repo.Create(ctx, types.Transfer{
		AssetType:    input.AssetType,
		Quantity:     input.Quantity,
		FromBase:     fromBase,
		ToBase:       input.ToBase,
		TransferDate: input.TransferDate,
		Status:       types.TransferStatusPending,
		RequestedBy:  user.FullName(),
		Notes:        input.Notes,
	})
	if err != nil {
		return types.Transfer{}, err
	}

	s.events.Publish(ctx, AssetEvent{
		Kind:      "transfer",
		ID:        transfer.ID,
		Base:      transfer.FromBase,
		AssetType: transfer.AssetType,
		Quantity:  transfer.Quantity,
	})
	return transfer, nil
}
