package serrors

import "fmt"

// Base is a coded error that carries a localization key alongside the
// machine-readable code.
type Base struct {
	Code       string
	Message    string
	MessageKey string
}

func (e *Base) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, messageKey string) *Base {
	return &Base{Code: code, Message: message, MessageKey: messageKey}
}

// FieldRequired reports a missing required field by name.
type FieldRequired struct {
	Base
	Field string
}

func NewFieldRequiredError(field, messageKey string) *FieldRequired {
	return &FieldRequired{
		Base: Base{
			Code:       "FIELD_REQUIRED",
			Message:    fmt.Sprintf("%s is required", field),
			MessageKey: messageKey,
		},
		Field: field,
	}
}
