package api

const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeAuthRequired      = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeConflict          = "CONFLICT"
	CodeInternalError     = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

type ErrorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ErrorDetail           `json:"details,omitempty"`
	Context *map[string]interface{} `json:"context,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() ErrorResponse {
	var context *map[string]interface{}
	if len(e.Context) > 0 {
		ctx := map[string]interface{}(e.Context)
		context = &ctx
	}
	return ErrorResponse{
		Error: ErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
			Context: context,
		},
	}
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func InsufficientStockErr(itemName string, requested, available int) *ErrorBuilder {
	return NewError(CodeInsufficientStock, "Stock insuficiente").
		WithContext(ErrorContext{
			"item_name": itemName,
			"requested": requested,
			"available": available,
		})
}

func QuotaExceededErr(officeID int64, limit int) *ErrorBuilder {
	return NewError(CodeQuotaExceeded, "Límite mensual de unidades alcanzado").
		WithContext(ErrorContext{
			"office_id": officeID,
			"limit":     limit,
		})
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func ConflictErr(msg string) *ErrorBuilder {
	return NewError(CodeConflict, msg)
}
