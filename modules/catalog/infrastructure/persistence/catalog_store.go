package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/modelstore"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindBool
)

// fieldSpec describes one editable field of an entity type. Translatable
// fields live in the per-locale translation table, plain fields are
// columns on the entity row. Anything outside the registry is not
// editable through moderation and rejects the merge.
type fieldSpec struct {
	translatable bool
	column       string
	kind         fieldKind
}

var categoryFields = map[string]fieldSpec{
	"title":       {translatable: true, column: "title", kind: kindText},
	"description": {translatable: true, column: "description", kind: kindText},
	"active":      {column: "active", kind: kindBool},
	"sort_order":  {column: "sort_order", kind: kindNumber},
}

var productFields = map[string]fieldSpec{
	"title":       {translatable: true, column: "title", kind: kindText},
	"description": {translatable: true, column: "description", kind: kindText},
	"active":      {column: "active", kind: kindBool},
	"price":       {column: "price", kind: kindNumber},
	"category_id": {column: "category_id", kind: kindNumber},
}

type entityTables struct {
	table        string
	translations string
	foreignKey   string
	fields       map[string]fieldSpec
}

func tablesFor(entityType changerequest.EntityType) (entityTables, error) {
	switch entityType {
	case changerequest.EntityCategory:
		return entityTables{
			table:        "categories",
			translations: "category_translations",
			foreignKey:   "category_id",
			fields:       categoryFields,
		}, nil
	case changerequest.EntityProduct:
		return entityTables{
			table:        "products",
			translations: "product_translations",
			foreignKey:   "product_id",
			fields:       productFields,
		}, nil
	default:
		return entityTables{}, fmt.Errorf("unknown entity type %q", entityType)
	}
}

// CatalogStore is the model store over the live catalog tables.
type CatalogStore struct{}

func NewCatalogStore() modelstore.Store {
	return &CatalogStore{}
}

func (s *CatalogStore) Get(ctx context.Context, ref changerequest.EntityRef) (changerequest.Changeset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return nil, err
	}
	id, err := entityRowID(ref.ID)
	if err != nil {
		return nil, modelstore.ErrEntityNotFound
	}

	var snapshot changerequest.Changeset
	switch ref.Type {
	case changerequest.EntityCategory:
		var active bool
		var sortOrder int
		err = tx.QueryRow(ctx,
			`SELECT active, sort_order FROM categories WHERE id = $1`, id,
		).Scan(&active, &sortOrder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, modelstore.ErrEntityNotFound
			}
			return nil, err
		}
		snapshot.Set("active", "", active)
		snapshot.Set("sort_order", "", float64(sortOrder))
	case changerequest.EntityProduct:
		var active bool
		var price float64
		var categoryID *int64
		err = tx.QueryRow(ctx,
			`SELECT active, price, category_id FROM products WHERE id = $1`, id,
		).Scan(&active, &price, &categoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, modelstore.ErrEntityNotFound
			}
			return nil, err
		}
		snapshot.Set("active", "", active)
		snapshot.Set("price", "", price)
		if categoryID != nil {
			snapshot.Set("category_id", "", float64(*categoryID))
		}
	}

	rows, err := tx.Query(ctx, fmt.Sprintf(
		`SELECT locale, title, description FROM %s WHERE %s = $1 ORDER BY locale`,
		tables.translations, tables.foreignKey,
	), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var locale, title, description string
		if err := rows.Scan(&locale, &title, &description); err != nil {
			return nil, err
		}
		snapshot.Set("title", locale, title)
		snapshot.Set("description", locale, description)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *CatalogStore) Apply(ctx context.Context, ref changerequest.EntityRef, patch changerequest.Changeset) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return err
	}
	id, err := entityRowID(ref.ID)
	if err != nil {
		return modelstore.ErrEntityNotFound
	}

	var exists bool
	if err := tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, tables.table,
	), id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return modelstore.ErrEntityNotFound
	}

	for _, entry := range patch {
		spec, ok := tables.fields[entry.Field]
		if !ok {
			return fmt.Errorf("field %q is not editable on %s", entry.Field, ref.Type)
		}
		if spec.translatable != (entry.Locale != "") {
			if spec.translatable {
				return fmt.Errorf("field %q requires a locale qualifier", entry.Field)
			}
			return fmt.Errorf("field %q does not take a locale qualifier", entry.Field)
		}

		value, err := coerceValue(spec.kind, entry.Value)
		if err != nil {
			return fmt.Errorf("field %q: %w", entry.Key(), err)
		}

		if spec.translatable {
			// column names come from the registry above, never from input
			_, err = tx.Exec(ctx, fmt.Sprintf(`
				INSERT INTO %s (%s, locale, %s) VALUES ($1, $2, $3)
				ON CONFLICT (%s, locale) DO UPDATE SET %s = EXCLUDED.%s`,
				tables.translations, tables.foreignKey, spec.column,
				tables.foreignKey, spec.column, spec.column,
			), id, entry.Locale, value)
		} else {
			_, err = tx.Exec(ctx, fmt.Sprintf(
				`UPDATE %s SET %s = $2, updated_at = now() WHERE id = $1`,
				tables.table, spec.column,
			), id, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogStore) Create(ctx context.Context, entityType changerequest.EntityType, patch changerequest.Changeset) (changerequest.EntityID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}
	tables, err := tablesFor(entityType)
	if err != nil {
		return "", err
	}

	var id int64
	if err := tx.QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s DEFAULT VALUES RETURNING id`, tables.table,
	)).Scan(&id); err != nil {
		return "", err
	}

	newID := changerequest.EntityID(strconv.FormatInt(id, 10))
	if err := s.Apply(ctx, changerequest.EntityRef{Type: entityType, ID: newID}, patch); err != nil {
		return "", err
	}
	return newID, nil
}

func entityRowID(id changerequest.EntityID) (int64, error) {
	return strconv.ParseInt(id.String(), 10, 64)
}

func coerceValue(kind fieldKind, v any) (any, error) {
	switch kind {
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}
		return b, nil
	case kindNumber:
		switch t := v.(type) {
		case float64:
			return t, nil
		case string:
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", t)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("expected number, got %T", v)
		}
	default:
		return nil, fmt.Errorf("unknown field kind %d", kind)
	}
}
