package models

// Envelope is the uniform response shape for every API endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope.
func Fail(message string, errs ...FieldError) Envelope {
	return Envelope{Success: false, Message: message, Errors: errs}
}
