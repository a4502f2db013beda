package persistence

import (
	"context"
	"fmt"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/infrastructure/persistence/models"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
)

const insertDecisionAuditQuery = `
	INSERT INTO moderation_decision_audit (
		request_id,
		entity_type,
		entity_id,
		action,
		decided_by,
		before,
		after,
		patch
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type DecisionAuditRepository struct{}

func NewDecisionAuditRepository() *DecisionAuditRepository {
	return &DecisionAuditRepository{}
}

func (r *DecisionAuditRepository) Create(ctx context.Context, entry *models.DecisionAudit) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		ctx,
		insertDecisionAuditQuery,
		entry.RequestID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.DecidedBy,
		entry.Before,
		entry.After,
		entry.Patch,
	); err != nil {
		return fmt.Errorf("insert decision audit: %w", err)
	}
	return nil
}
