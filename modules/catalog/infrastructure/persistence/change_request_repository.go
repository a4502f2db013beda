package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/infrastructure/persistence/models"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
	"github.com/oliver-kandagor/catalog-admin/pkg/repo"
)

const changeRequestColumns = `id, entity_type, entity_id, requested_by, payload, status, status_note, created_at, decided_at, decided_by`

type ChangeRequestRepository struct{}

func NewChangeRequestRepository() changerequest.Repository {
	return &ChangeRequestRepository{}
}

func (r *ChangeRequestRepository) Create(ctx context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cr.Payload)
	if err != nil {
		return nil, err
	}

	var entityID *string
	if !cr.EntityRef.ID.IsZero() {
		s := cr.EntityRef.ID.String()
		entityID = &s
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO change_requests (entity_type, entity_id, requested_by, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+changeRequestColumns,
		string(cr.EntityRef.Type),
		entityID,
		cr.RequestedBy,
		payload,
		string(changerequest.StatusPending),
	)
	return scanChangeRequest(row)
}

func (r *ChangeRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+changeRequestColumns+`
		FROM change_requests
		WHERE id = $1`,
		id,
	)
	cr, err := scanChangeRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, changerequest.ErrNotFound
	}
	return cr, err
}

func (r *ChangeRequestRepository) List(ctx context.Context, params *changerequest.FindParams) ([]*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildChangeRequestFilters(params)
	query := `
		SELECT ` + changeRequestColumns + `
		FROM change_requests
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*changerequest.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ChangeRequestRepository) Count(ctx context.Context, params *changerequest.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	where, args := buildChangeRequestFilters(params)

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM change_requests
		WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChangeRequestRepository) UpdatePayload(ctx context.Context, id uuid.UUID, payload changerequest.Changeset) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE change_requests
		SET payload = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+changeRequestColumns,
		id,
		raw,
	)
	cr, err := scanChangeRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrNotPending(ctx, id)
	}
	return cr, err
}

func (r *ChangeRequestRepository) UpdateEntityID(ctx context.Context, id uuid.UUID, entityID changerequest.EntityID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE change_requests
		SET entity_id = $2
		WHERE id = $1`,
		id,
		entityID.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return changerequest.ErrNotFound
	}
	return nil
}

// UpdateStatus is the atomic pending-only transition: the status guard
// lives in the WHERE clause, so two racing deciders cannot both win.
func (r *ChangeRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status changerequest.Status, note string, decidedBy string) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE change_requests
		SET status = $2, status_note = NULLIF($3, ''), decided_at = now(), decided_by = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+changeRequestColumns,
		id,
		string(status),
		note,
		decidedBy,
	)
	cr, err := scanChangeRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrNotPending(ctx, id)
	}
	return cr, err
}

// missingOrNotPending disambiguates a zero-row conditional update.
func (r *ChangeRequestRepository) missingOrNotPending(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM change_requests WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return changerequest.ErrNotFound
	}
	if err != nil {
		return err
	}
	return changerequest.ErrNotPending
}

func buildChangeRequestFilters(params *changerequest.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	argPos := 1
	if params == nil {
		return where, args
	}

	if params.EntityType != "" {
		where = append(where, fmt.Sprintf("entity_type = $%d", argPos))
		args = append(args, string(params.EntityType))
		argPos++
	}
	if params.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(params.Status))
		argPos++
	}
	if requestedBy := strings.TrimSpace(params.RequestedBy); requestedBy != "" {
		where = append(where, fmt.Sprintf("requested_by = $%d", argPos))
		args = append(args, requestedBy)
	}
	return where, args
}

func scanChangeRequest(row pgx.Row) (*changerequest.ChangeRequest, error) {
	var m models.ChangeRequest
	if err := row.Scan(
		&m.ID,
		&m.EntityType,
		&m.EntityID,
		&m.RequestedBy,
		&m.Payload,
		&m.Status,
		&m.StatusNote,
		&m.CreatedAt,
		&m.DecidedAt,
		&m.DecidedBy,
	); err != nil {
		return nil, err
	}
	return toDomainChangeRequest(&m)
}

func toDomainChangeRequest(m *models.ChangeRequest) (*changerequest.ChangeRequest, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}

	var payload changerequest.Changeset
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, err
	}

	ref := changerequest.EntityRef{Type: changerequest.EntityType(m.EntityType)}
	if m.EntityID != nil {
		ref.ID = changerequest.EntityID(*m.EntityID)
	}

	cr := &changerequest.ChangeRequest{
		ID:          id,
		EntityRef:   ref,
		RequestedBy: m.RequestedBy,
		Payload:     payload,
		Status:      changerequest.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		DecidedAt:   m.DecidedAt,
		DecidedBy:   m.DecidedBy,
	}
	if m.StatusNote != nil {
		cr.StatusNote = *m.StatusNote
	}
	return cr, nil
}
