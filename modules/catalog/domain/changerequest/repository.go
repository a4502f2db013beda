package changerequest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no request with the given id exists.
	ErrNotFound = errors.New("change request not found")
	// ErrNotPending is returned when a conditional mutation lost against
	// a request that already left the pending state.
	ErrNotPending = errors.New("change request is not pending")
)

type FindParams struct {
	EntityType  EntityType
	Status      Status
	RequestedBy string
	Limit       int
	Offset      int
}

type Repository interface {
	// Create persists a new request. The store assigns the id; any id
	// set on cr is ignored.
	Create(ctx context.Context, cr *ChangeRequest) (*ChangeRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ChangeRequest, error)
	// List returns requests most-recent-first by created_at.
	List(ctx context.Context, params *FindParams) ([]*ChangeRequest, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	// UpdatePayload swaps the payload of a request that is still
	// pending; ErrNotPending otherwise.
	UpdatePayload(ctx context.Context, id uuid.UUID, payload Changeset) (*ChangeRequest, error)
	// UpdateEntityID records the entity materialized by an approved
	// "create new" request.
	UpdateEntityID(ctx context.Context, id uuid.UUID, entityID EntityID) error
	// UpdateStatus performs the pending-only transition as one atomic
	// conditional write: exactly one concurrent caller wins, the rest
	// get ErrNotPending.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, note string, decidedBy string) (*ChangeRequest, error)
}
