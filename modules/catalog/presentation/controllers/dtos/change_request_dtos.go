package dtos

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/oliver-kandagor/catalog-admin/modules/catalog/domain/changerequest"
	"github.com/oliver-kandagor/catalog-admin/pkg/constants"
	"github.com/oliver-kandagor/catalog-admin/pkg/serrors"
)

type CreateChangeRequestDTO struct {
	EntityType string                  `json:"entity_type" validate:"required"`
	EntityID   changerequest.EntityID  `json:"entity_id"`
	Payload    changerequest.Changeset `json:"payload" validate:"required"`
}

func (d *CreateChangeRequestDTO) Ok() (map[string]string, bool) {
	return validateStruct(d)
}

func (d *CreateChangeRequestDTO) EntityRef() changerequest.EntityRef {
	return changerequest.EntityRef{
		Type: changerequest.EntityType(d.EntityType),
		ID:   d.EntityID,
	}
}

type ResubmitChangeRequestDTO struct {
	Payload changerequest.Changeset `json:"payload" validate:"required"`
}

func (d *ResubmitChangeRequestDTO) Ok() (map[string]string, bool) {
	return validateStruct(d)
}

type RejectChangeRequestDTO struct {
	Note string `json:"note" validate:"required"`
}

func (d *RejectChangeRequestDTO) Ok() (map[string]string, bool) {
	return validateStruct(d)
}

func validateStruct(dto any) (map[string]string, bool) {
	errs := constants.Validate.Struct(dto)
	if errs == nil {
		return map[string]string{}, true
	}
	fields := make(map[string]string)
	var validatorErrs validator.ValidationErrors
	if errors.As(errs, &validatorErrs) {
		for _, e := range validatorErrs {
			if e.Tag() == "required" {
				fields[e.Field()] = serrors.NewFieldRequiredError(e.Field(), "").Message
				continue
			}
			fields[e.Field()] = fmt.Sprintf("%s failed validation on %s", e.Field(), e.Tag())
		}
	}
	return fields, false
}
