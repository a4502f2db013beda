package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/presentation/controllers/dtos"
	"github.com/oliver-kandagor/catalog-admin/modules/catalog/services"
	"github.com/oliver-kandagor/catalog-admin/pkg/application"
	"github.com/oliver-kandagor/catalog-admin/pkg/composables"
	"github.com/oliver-kandagor/catalog-admin/pkg/httpapi"
)

// RequestsController exposes the moderation workflow as a JSON API.
// Submission and resubmission are open to any authenticated actor;
// decisions require the admin role, enforced by the service.
type RequestsController struct {
	app        application.Application
	moderation *services.ModerationService
	apiPrefix  string
}

func NewRequestsController(app application.Application) application.Controller {
	return &RequestsController{
		app:        app,
		moderation: app.Service(services.ModerationService{}).(*services.ModerationService),
		apiPrefix:  "/catalog/api",
	}
}

func (c *RequestsController) Key() string {
	return c.apiPrefix
}

func (c *RequestsController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/requests", c.instrumentAPI("requests.create", c.Create)).Methods(http.MethodPost)
	api.HandleFunc("/requests", c.instrumentAPI("requests.list", c.List)).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}", c.instrumentAPI("requests.get", c.Get)).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}", c.instrumentAPI("requests.resubmit", c.Resubmit)).Methods(http.MethodPatch)
	api.HandleFunc("/requests/{id}:approve", c.instrumentAPI("requests.approve", c.Approve)).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}:reject", c.instrumentAPI("requests.reject", c.Reject)).Methods(http.MethodPost)
}

func (c *RequestsController) Create(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	actor, err := composables.UseActor(r.Context())
	if err != nil {
		writeAPIError(w, http.StatusForbidden, requestID, services.CodeForbidden, "actor identity is required")
		return
	}

	dto := &dtos.CreateChangeRequestDTO{}
	if err := decodeJSON(r.Body, dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_BODY", "invalid json body")
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, requestID, fields)
		return
	}

	created, err := c.moderation.Submit(r.Context(), services.SubmitInput{
		EntityRef:   dto.EntityRef(),
		RequestedBy: actor.ID,
		Payload:     dto.Payload,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c *RequestsController) List(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())

	query := r.URL.Query()
	params := services.ListParams{
		EntityType:  changerequest.EntityType(query.Get("entity_type")),
		Status:      changerequest.Status(query.Get("status")),
		RequestedBy: query.Get("requested_by"),
	}
	var err error
	if params.Page, err = parsePositiveInt(query.Get("page")); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_QUERY", "page must be a positive integer")
		return
	}
	if params.PerPage, err = parsePositiveInt(query.Get("per_page")); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_QUERY", "per_page must be a positive integer")
		return
	}

	page, err := c.moderation.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (c *RequestsController) Get(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}
	view, err := c.moderation.Review(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (c *RequestsController) Resubmit(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	dto := &dtos.ResubmitChangeRequestDTO{}
	if err := decodeJSON(r.Body, dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_BODY", "invalid json body")
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, requestID, fields)
		return
	}

	updated, err := c.moderation.Resubmit(r.Context(), id, dto.Payload)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *RequestsController) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}
	decided, err := c.moderation.Approve(r.Context(), id)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}

func (c *RequestsController) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	dto := &dtos.RejectChangeRequestDTO{}
	if err := decodeJSON(r.Body, dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_BODY", "invalid json body")
		return
	}
	if _, ok := dto.Ok(); !ok {
		writeAPIError(w, http.StatusBadRequest, requestID, services.CodeNoteRequired, "a rejection note is required")
		return
	}

	decided, err := c.moderation.Reject(r.Context(), id, dto.Note)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	writeJSON(w, http.StatusOK, decided)
}

func pathID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "CATALOG_INVALID_QUERY", "invalid request id")
		return uuid.Nil, false
	}
	return id, true
}

func parsePositiveInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	writeAPIError(w, http.StatusInternalServerError, requestID, "CATALOG_INTERNAL", err.Error())
}

func writeValidationError(w http.ResponseWriter, requestID string, fields map[string]string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for field, message := range fields {
		meta["field."+field] = message
	}
	_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, services.CodeValidation, "validation failed", meta)
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	_ = httpapi.WriteError(w, status, code, message, meta)
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
