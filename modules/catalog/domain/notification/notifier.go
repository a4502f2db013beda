// Package notification defines how moderation outcomes reach the
// requester. Delivery is fire-and-forget: a failing notifier must never
// fail the workflow operation that produced the outcome.
package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
)

type Result string

const (
	ResultApproved Result = "approved"
	ResultRejected Result = "rejected"
)

type Outcome struct {
	RequestID uuid.UUID
	EntityRef changerequest.EntityRef
	Result    Result
	// Note carries the rejection note; empty on approval.
	Note string
}

type Notifier interface {
	Notify(ctx context.Context, recipient string, outcome Outcome) error
}
