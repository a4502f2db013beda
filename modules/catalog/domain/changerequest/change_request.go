package changerequest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusCanceled Status = "canceled"
)

// Terminal reports whether no further transition exists out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusCanceled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCanceled:
		return true
	}
	return false
}

type EntityType string

const (
	EntityProduct  EntityType = "product"
	EntityCategory EntityType = "category"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityProduct, EntityCategory:
		return true
	}
	return false
}

// EntityID is the opaque identifier of a live entity. Clients send it
// either as a JSON string or a bare number; both decode to the same id.
type EntityID string

func (id EntityID) IsZero() bool { return id == "" }

func (id EntityID) String() string { return string(id) }

func (id *EntityID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("entity_id: expected string or number, got %s", raw)
	}
	*id = EntityID(raw)
	return nil
}

// EntityRef identifies the live object a request targets. An empty ID
// marks a "create new" request: there is nothing live to diff against,
// and approval materializes the entity.
type EntityRef struct {
	Type EntityType `json:"entity_type"`
	ID   EntityID   `json:"entity_id,omitempty"`
}

func (r EntityRef) IsCreate() bool { return r.ID.IsZero() }

func (r EntityRef) String() string {
	if r.IsCreate() {
		return string(r.Type) + ":new"
	}
	return string(r.Type) + ":" + string(r.ID)
}

// ChangeRequest is a proposed, not-yet-applied edit to a live catalog
// entity. The payload is immutable once a decision is made; while
// pending it may be replaced through resubmission, subject to the
// configured policy.
type ChangeRequest struct {
	ID          uuid.UUID  `json:"id"`
	EntityRef   EntityRef  `json:"entity_ref"`
	RequestedBy string     `json:"requested_by"`
	Payload     Changeset  `json:"payload"`
	Status      Status     `json:"status"`
	StatusNote  string     `json:"status_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	DecidedBy   *string    `json:"decided_by,omitempty"`
}
