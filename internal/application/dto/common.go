package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldViolation error de validación a nivel de campo.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse lista estructurada de violaciones de campo. Nunca es
// fatal: se devuelve al caller como 400.
type ValidationErrorResponse struct {
	Code       string           `json:"code"` // siempre "VALIDATION"
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations"`
}

// NewValidationError arma la respuesta estándar de violaciones.
func NewValidationError(violations []FieldViolation) *ValidationErrorResponse {
	return &ValidationErrorResponse{
		Code:       "VALIDATION",
		Message:    "la petición contiene campos inválidos",
		Violations: violations,
	}
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
