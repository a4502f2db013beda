package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/diff"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/modelstore"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/notification"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
	"github.com/oliver-kandagor/catalog-admin/pkg/configuration"
	"github.com/oliver-kandagor/catalog-admin/pkg/eventbus"
	"github.com/oliver-kandagor/catalog-admin/pkg/intl"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// Stable error codes for the moderation API.
const (
	CodeValidation    = "CATALOG_VALIDATION"
	CodeNoteRequired  = "CATALOG_NOTE_REQUIRED"
	CodeNotFound      = "CATALOG_NOT_FOUND"
	CodeInvalidState  = "CATALOG_INVALID_STATE"
	CodeMergeRejected = "CATALOG_MERGE_REJECTED"
	CodeForbidden     = "CATALOG_FORBIDDEN"
)

const supersededNote = "superseded by resubmission"

// ModerationService runs the change-request workflow: non-privileged
// actors submit and resubmit proposals, administrators review computed
// diffs and decide. Decisions are single-shot; a lost race surfaces as
// CATALOG_INVALID_STATE, never as a double apply.
type ModerationService struct {
	requests  changerequest.Repository
	store     modelstore.Store
	audit     AuditRecorder
	notifier  notification.Notifier
	publisher eventbus.EventBus

	validLocales       map[string]bool
	resubmissionPolicy string
	pageSize           int
	maxPageSize        int

	// inTx is swap-able so unit tests can run without a database.
	inTx func(ctx context.Context, fn func(context.Context) error) error
}

func NewModerationService(
	requests changerequest.Repository,
	store modelstore.Store,
	audit AuditRecorder,
	notifier notification.Notifier,
	publisher eventbus.EventBus,
) *ModerationService {
	conf := configuration.Use()
	return &ModerationService{
		requests:           requests,
		store:              store,
		audit:              audit,
		notifier:           notifier,
		publisher:          publisher,
		validLocales:       intl.LocaleSet(conf.SupportedLocales),
		resubmissionPolicy: conf.Moderation.ResubmissionPolicy,
		pageSize:           conf.PageSize,
		maxPageSize:        conf.MaxPageSize,
		inTx:               composables.InTx,
	}
}

type SubmitInput struct {
	EntityRef   changerequest.EntityRef
	RequestedBy string
	Payload     changerequest.Changeset
}

// Submit records a new pending change request. The payload is stored
// verbatim, in the order the proposer sent it; nothing touches the live
// entity until approval.
func (s *ModerationService) Submit(ctx context.Context, input SubmitInput) (*changerequest.ChangeRequest, error) {
	if strings.TrimSpace(input.RequestedBy) == "" {
		return nil, newServiceError(422, CodeValidation, "requested_by is required", nil)
	}
	if !input.EntityRef.Type.Valid() {
		return nil, newServiceError(422, CodeValidation, fmt.Sprintf("unknown entity type %q", input.EntityRef.Type), nil)
	}
	if input.Payload.IsEmpty() {
		return nil, newServiceError(422, CodeValidation, "payload must contain at least one field", nil)
	}
	if err := s.validateLocales(input.Payload); err != nil {
		return nil, err
	}

	created, err := s.requests.Create(ctx, &changerequest.ChangeRequest{
		EntityRef:   input.EntityRef,
		RequestedBy: input.RequestedBy,
		Payload:     input.Payload,
		Status:      changerequest.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(changerequest.SubmittedEvent{Request: created})
	return created, nil
}

// Resubmit replaces the payload of a still-pending request. Under the
// overwrite policy the request keeps its identity; under the
// new_request policy the old request is canceled and a fresh one is
// created. Only the original requester may resubmit.
func (s *ModerationService) Resubmit(ctx context.Context, id uuid.UUID, payload changerequest.Changeset) (*changerequest.ChangeRequest, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, newServiceError(403, CodeForbidden, "actor identity is required", err)
	}
	if payload.IsEmpty() {
		return nil, newServiceError(422, CodeValidation, "payload must contain at least one field", nil)
	}
	if err := s.validateLocales(payload); err != nil {
		return nil, err
	}

	existing, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	if existing.RequestedBy != actor.ID {
		return nil, newServiceError(403, CodeForbidden, "only the original requester may resubmit", nil)
	}
	if existing.Status.Terminal() {
		return nil, newServiceError(409, CodeInvalidState, fmt.Sprintf("request %s is %s", id, existing.Status), nil)
	}

	if s.resubmissionPolicy == configuration.ResubmissionNewRequest {
		var replacement *changerequest.ChangeRequest
		err := s.inTx(ctx, func(txCtx context.Context) error {
			if _, err := s.requests.UpdateStatus(txCtx, id, changerequest.StatusCanceled, supersededNote, actor.ID); err != nil {
				return s.mapRepoError(err, id)
			}
			created, err := s.requests.Create(txCtx, &changerequest.ChangeRequest{
				EntityRef:   existing.EntityRef,
				RequestedBy: existing.RequestedBy,
				Payload:     payload,
				Status:      changerequest.StatusPending,
			})
			if err != nil {
				return err
			}
			replacement = created
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(changerequest.SubmittedEvent{Request: replacement})
		return replacement, nil
	}

	updated, err := s.requests.UpdatePayload(ctx, id, payload)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return updated, nil
}

// RequestView pairs a request with the diff an administrator reviews.
// The diff is recomputed against the live entity on every read, so two
// reviews straddling an external entity edit can legitimately disagree.
type RequestView struct {
	Request *changerequest.ChangeRequest `json:"request"`
	Diff    []diff.FieldDiff             `json:"diff"`
}

type RequestPage struct {
	Items   []*RequestView `json:"items"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// Review returns one request with its freshly computed diff.
func (s *ModerationService) Review(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id)
	}
	return s.view(ctx, request), nil
}

type ListParams struct {
	EntityType  changerequest.EntityType
	Status      changerequest.Status
	RequestedBy string
	Page        int
	PerPage     int
}

// List returns a page of requests, most recent first, each with its
// current diff.
func (s *ModerationService) List(ctx context.Context, params ListParams) (*RequestPage, error) {
	if params.EntityType != "" && !params.EntityType.Valid() {
		return nil, newServiceError(422, CodeValidation, fmt.Sprintf("unknown entity type %q", params.EntityType), nil)
	}
	if params.Status != "" && !params.Status.Valid() {
		return nil, newServiceError(422, CodeValidation, fmt.Sprintf("unknown status %q", params.Status), nil)
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = s.pageSize
	}
	if perPage > s.maxPageSize {
		perPage = s.maxPageSize
	}

	findParams := &changerequest.FindParams{
		EntityType:  params.EntityType,
		Status:      params.Status,
		RequestedBy: params.RequestedBy,
		Limit:       perPage,
		Offset:      (page - 1) * perPage,
	}
	requests, err := s.requests.List(ctx, findParams)
	if err != nil {
		return nil, err
	}
	total, err := s.requests.Count(ctx, findParams)
	if err != nil {
		return nil, err
	}

	items := make([]*RequestView, 0, len(requests))
	for _, request := range requests {
		items = append(items, s.view(ctx, request))
	}
	return &RequestPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Approve merges the request's changed fields into the live entity and
// marks the request approved, atomically. A merge failure rolls the
// whole decision back and the request stays pending.
func (s *ModerationService) Approve(ctx context.Context, id uuid.UUID) (*changerequest.ChangeRequest, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	var decided *changerequest.ChangeRequest
	err = s.inTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(err, id)
		}
		if request.Status.Terminal() {
			return newServiceError(409, CodeInvalidState, fmt.Sprintf("request %s is %s", id, request.Status), nil)
		}

		current := changerequest.Changeset{}
		if !request.EntityRef.IsCreate() {
			current, err = s.store.Get(txCtx, request.EntityRef)
			if err != nil {
				if errors.Is(err, modelstore.ErrEntityNotFound) {
					return newServiceError(404, CodeNotFound, fmt.Sprintf("entity %s no longer exists", request.EntityRef), err)
				}
				return err
			}
		}

		patch := diff.Patch(diff.Compute(current, request.Payload))

		if request.EntityRef.IsCreate() {
			// A new entity takes the whole payload. Diffing against the
			// empty state would drop fields whose proposed value equals
			// the empty sentinel (false, 0, "") and leave them to the
			// column defaults.
			patch = request.Payload
			entityID, err := s.store.Create(txCtx, request.EntityRef.Type, request.Payload)
			if err != nil {
				return newServiceError(502, CodeMergeRejected, "entity creation was rejected by the catalog", err)
			}
			if err := s.requests.UpdateEntityID(txCtx, id, entityID); err != nil {
				return err
			}
			request.EntityRef.ID = entityID
		} else if !patch.IsEmpty() {
			if err := s.store.Apply(txCtx, request.EntityRef, patch); err != nil {
				if errors.Is(err, modelstore.ErrEntityNotFound) {
					return newServiceError(404, CodeNotFound, fmt.Sprintf("entity %s no longer exists", request.EntityRef), err)
				}
				return newServiceError(502, CodeMergeRejected, "merge was rejected by the catalog", err)
			}
		}

		decided, err = s.requests.UpdateStatus(txCtx, id, changerequest.StatusApproved, "", actor.ID)
		if err != nil {
			return s.mapRepoError(err, id)
		}
		decided.EntityRef = request.EntityRef

		entry, err := buildAuditEntry(decided, AuditActionApprove, actor.ID, current, merged(current, patch))
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(changerequest.ApprovedEvent{Request: decided})
	s.notify(ctx, decided, notification.ResultApproved, "")
	return decided, nil
}

// Reject cancels a pending request without touching the live entity.
// The note is mandatory; it is stored on the request and forwarded to
// the requester.
func (s *ModerationService) Reject(ctx context.Context, id uuid.UUID, note string) (*changerequest.ChangeRequest, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, newServiceError(400, CodeNoteRequired, "a rejection note is required", nil)
	}

	var decided *changerequest.ChangeRequest
	err = s.inTx(ctx, func(txCtx context.Context) error {
		decided, err = s.requests.UpdateStatus(txCtx, id, changerequest.StatusCanceled, note, actor.ID)
		if err != nil {
			return s.mapRepoError(err, id)
		}
		entry, err := buildAuditEntry(decided, AuditActionReject, actor.ID, changerequest.Changeset{}, changerequest.Changeset{})
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(changerequest.RejectedEvent{Request: decided, Note: note})
	s.notify(ctx, decided, notification.ResultRejected, note)
	return decided, nil
}

func (s *ModerationService) view(ctx context.Context, request *changerequest.ChangeRequest) *RequestView {
	current := changerequest.Changeset{}
	if !request.EntityRef.IsCreate() {
		got, err := s.store.Get(ctx, request.EntityRef)
		if err == nil {
			current = got
		}
		// A vanished entity diffs against the empty state so pending
		// requests remain reviewable.
	}
	return &RequestView{Request: request, Diff: diff.Compute(current, request.Payload)}
}

func (s *ModerationService) validateLocales(payload changerequest.Changeset) error {
	for _, locale := range payload.Locales() {
		if !s.validLocales[locale] {
			return newServiceError(422, CodeValidation, fmt.Sprintf("locale %q is not supported", locale), nil)
		}
	}
	return nil
}

func (s *ModerationService) requireAdmin(ctx context.Context) (composables.Actor, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return composables.Actor{}, newServiceError(403, CodeForbidden, "actor identity is required", err)
	}
	if !actor.IsAdmin() {
		return composables.Actor{}, newServiceError(403, CodeForbidden, "only administrators may decide requests", nil)
	}
	return actor, nil
}

func (s *ModerationService) mapRepoError(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, changerequest.ErrNotFound):
		return newServiceError(404, CodeNotFound, fmt.Sprintf("change request %s not found", id), err)
	case errors.Is(err, changerequest.ErrNotPending):
		return newServiceError(409, CodeInvalidState, fmt.Sprintf("change request %s is no longer pending", id), err)
	}
	return err
}

// notify is fire-and-forget: the decision already committed.
func (s *ModerationService) notify(ctx context.Context, request *changerequest.ChangeRequest, result notification.Result, note string) {
	outcome := notification.Outcome{
		RequestID: request.ID,
		EntityRef: request.EntityRef,
		Result:    result,
		Note:      note,
	}
	if err := s.notifier.Notify(ctx, request.RequestedBy, outcome); err != nil {
		composables.UseLogger(ctx).WithError(err).
			WithField("request_id", request.ID).
			Warn("failed to notify requester")
	}
}

// merged is the post-decision snapshot for the audit trail.
func merged(current, patch changerequest.Changeset) changerequest.Changeset {
	out := make(changerequest.Changeset, len(current))
	copy(out, current)
	for _, e := range patch {
		out.Set(e.Field, e.Locale, e.Value)
	}
	return out
}
