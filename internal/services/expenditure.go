package services

import (
	"context"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/types"
)

// ExpenditureRepository defines persistence operations for expenditures.
type ExpenditureRepository interface {
	List(ctx context.Context) ([]types.Expenditure, error)
	Create(ctx context.Context, e types.Expenditure) (types.Expenditure, error)
}

// CreateExpenditureInput carries the caller-supplied fields for a new
// expenditure record.
type CreateExpenditureInput struct {
	AssetType       string
	Quantity        int
	ExpendedBy      string
	ExpenditureDate string
	Base            string
	Purpose         string
	Justification   string
}

// ExpenditureService encapsulates expenditure use-cases.
type ExpenditureService struct {
	repo   ExpenditureRepository
	events *EventPublisher
}

func NewExpenditureService(repo ExpenditureRepository, events *EventPublisher) *ExpenditureService {
	return &ExpenditureService{repo: repo, events: events}
}

// List returns the expenditures visible to user that pass q, newest first.
func (s *ExpenditureService) List(ctx context.Context, user types.User, q scope.Query) ([]types.Expenditure, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Expenditures(user, records, q), nil
}

// Create records an expenditure. Non-admin callers always record against
// their own base.
func (s *ExpenditureService) Create(ctx context.Context, user types.User, input CreateExpenditureInput) (types.Expenditure, error) {
	base := input.Base
	if user.Role != types.RoleAdmin || base == "" {
		base = user.BaseName
	}

	expenditure, err := s.repo.Create(ctx, types.Expenditure{
		AssetType:       input.AssetType,
		Quantity:        input.Quantity,
		ExpendedBy:      input.ExpendedBy,
		ExpenditureDate: input.ExpenditureDate,
		Base:            base,
		Purpose:         input.Purpose,
		Justification:   input.Justification,
	})
	if err != nil {
		return types.Expenditure{}, err
	}

	s.events.Publish(ctx, AssetEvent{
		Kind:      "expenditure",
		ID:        expenditure.ID,
		Base:      expenditure.Base,
		AssetType: expenditure.AssetType,
		Quantity:  expenditure.Quantity,
	})
	return expenditure, nil
}
