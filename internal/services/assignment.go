package services

import (
	"context"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/types"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	List(ctx context.Context) ([]types.Assignment, error)
	Create(ctx context.Context, a types.Assignment) (types.Assignment, error)
}

// CreateAssignmentInput carries the caller-supplied fields for a new
// asset assignment.
type CreateAssignmentInput struct {
	AssetType      string
	Quantity       int
	AssignedTo     string
	AssignmentDate string
	Base           string
	Purpose        string
}

// AssignmentService encapsulates assignment use-cases.
type AssignmentService struct {
	repo   AssignmentRepository
	events *EventPublisher
}

func NewAssignmentService(repo AssignmentRepository, events *EventPublisher) *AssignmentService {
	return &AssignmentService{repo: repo, events: events}
}

// List returns the assignments visible to user that pass q, newest first.
func (s *AssignmentService) List(ctx context.Context, user types.User, q scope.Query) ([]types.Assignment, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return scope.Assignments(user, records, q), nil
}

// Create records an asset assignment issued by user. Non-admin callers
// always record against their own base; status starts active.
func (s *AssignmentService) Create(ctx context.Context, user types.User, input CreateAssignmentInput) (types.Assignment, error) {
	base := input.Base
	if user.Role != types.RoleAdmin || base == "" {
		base = user.BaseName
	}

	assignment, err := s.repo.Create(ctx, types.Assignment{
		AssetType:      input.AssetType,
		Quantity:       input.Quantity,
		AssignedTo:     input.AssignedTo,
		AssignedBy:     user.FullName(),
		AssignmentDate: input.AssignmentDate,
		Base:           base,
		Purpose:        input.Purpose,
		Status:         types.AssignmentStatusActive,
	})
	if err != nil {
		return types.Assignment{}, err
	}

	s.events.Publish(ctx, AssetEvent{
		Kind:      "assignment",
		ID:        assignment.ID,
		Base:      assignment.Base,
		AssetType: assignment.AssetType,
		Quantity:  assignment.Quantity,
	})
	return assignment, nil
}
