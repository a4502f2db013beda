package models

import "time"

type ChangeRequest struct {
	ID          string
	EntityType  string
	EntityID    *string
	RequestedBy string
	Payload     []byte
	Status      string
	StatusNote  *string
	CreatedAt   time.Time
	DecidedAt   *time.Time
	DecidedBy   *string
}

type DecisionAudit struct {
	ID         string
	RequestID  string
	EntityType string
	EntityID   *string
	Action     string
	DecidedBy  string
	Before     []byte
	After      []byte
	Patch      []byte
	CreatedAt  time.Time
}
