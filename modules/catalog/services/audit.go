package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wI2L/jsondiff"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/infrastructure/persistence/models"
)

// AuditAction values recorded with each moderation decision.
const (
	AuditActionApprove = "approve"
	AuditActionReject  = "reject"
)

// AuditRecorder persists a trace of every moderation decision. It runs
// inside the decision transaction, so a failed insert voids the decision.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.DecisionAudit) error
}

type decisionAuditWriter interface {
	Create(ctx context.Context, entry *models.DecisionAudit) error
}

type auditRecorder struct {
	writer decisionAuditWriter
}

func NewAuditRecorder(writer decisionAuditWriter) AuditRecorder {
	return &auditRecorder{writer: writer}
}

func (a *auditRecorder) Record(ctx context.Context, entry *models.DecisionAudit) error {
	return a.writer.Create(ctx, entry)
}

// buildAuditEntry captures the entity state before and after a decision
// together with an RFC 6902 patch between the two snapshots.
func buildAuditEntry(
	request *changerequest.ChangeRequest,
	action string,
	decidedBy string,
	before changerequest.Changeset,
	after changerequest.Changeset,
) (*models.DecisionAudit, error) {
	beforeWire := before.Wire()
	afterWire := after.Wire()

	beforeJSON, err := json.Marshal(beforeWire)
	if err != nil {
		return nil, fmt.Errorf("marshal audit before state: %w", err)
	}
	afterJSON, err := json.Marshal(afterWire)
	if err != nil {
		return nil, fmt.Errorf("marshal audit after state: %w", err)
	}
	patch, err := jsondiff.Compare(beforeWire, afterWire)
	if err != nil {
		return nil, fmt.Errorf("compute audit patch: %w", err)
	}
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal audit patch: %w", err)
	}

	var entityID *string
	if !request.EntityRef.IsCreate() {
		id := string(request.EntityRef.ID)
		entityID = &id
	}
	return &models.DecisionAudit{
		RequestID:  request.ID.String(),
		EntityType: string(request.EntityRef.Type),
		EntityID:   entityID,
		Action:     action,
		DecidedBy:  decidedBy,
		Before:     beforeJSON,
		After:      afterJSON,
		Patch:      patchJSON,
	}, nil
}
