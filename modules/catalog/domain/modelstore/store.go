// Package modelstore abstracts whatever owns the live catalog entities.
// The moderation engine only ever reads a snapshot of an entity's
// current values and, on approval, hands back the merge patch; it never
// mutates entities any other way.
package modelstore

import (
	"context"
	"errors"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
)

// ErrEntityNotFound is returned by Get and Apply when the referenced
// entity does not exist (anymore).
var ErrEntityNotFound = errors.New("entity not found")

type Store interface {
	// Get returns the entity's current values in changeset shape:
	// translatable fields one entry per locale, plain fields one entry.
	Get(ctx context.Context, ref changerequest.EntityRef) (changerequest.Changeset, error)
	// Apply merges the patch into the live entity, all-or-nothing. Any
	// error means nothing was applied.
	Apply(ctx context.Context, ref changerequest.EntityRef, patch changerequest.Changeset) error
	// Create materializes a new entity from the patch and returns its id.
	Create(ctx context.Context, entityType changerequest.EntityType, patch changerequest.Changeset) (changerequest.EntityID, error)
}
