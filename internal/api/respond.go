package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/middleware"
	"github.com/sigainv/siga-backend/internal/workflow"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, builder *ErrorBuilder) {
	writeJSON(w, status, builder.Create())
}

// Responder satisfies the auth middleware's error interface.
type Responder struct{}

func (Responder) Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, http.StatusUnauthorized, Unauthorized(message))
}

func (Responder) Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, http.StatusForbidden, PermissionDenied(message))
}

// writeDomainError maps service errors onto the HTTP envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workflow.ErrObservationTooShort):
		writeError(w, http.StatusBadRequest, ValidationErr("observation too short", []ErrorDetail{
			{Field: "observation", Message: "must be at least 15 characters"},
		}))
	case errors.Is(err, workflow.ErrInvalidPercentage):
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office percentage", []ErrorDetail{
			{Field: "office_percentage", Message: "must be between 1 and 100"},
		}))
	case errors.Is(err, workflow.ErrInvalidQuantity), errors.Is(err, db.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, ValidationErr("invalid quantity", []ErrorDetail{
			{Field: "quantity", Message: "must be a positive integer"},
		}))
	case errors.Is(err, workflow.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, ValidationErr("rejection reason required", []ErrorDetail{
			{Field: "reason", Message: "a rejection reason is required"},
		}))
	case errors.Is(err, workflow.ErrPastReturnDate):
		writeError(w, http.StatusBadRequest, ValidationErr("invalid return date", []ErrorDetail{
			{Field: "expected_return_date", Message: "must not be in the past"},
		}))
	case errors.Is(err, workflow.ErrOfficeNotVisible):
		writeError(w, http.StatusForbidden, PermissionDenied("office not visible to this user"))
	case errors.Is(err, db.ErrInsufficientStock):
		writeError(w, http.StatusConflict, NewError(CodeInsufficientStock, "Stock insuficiente"))
	case errors.Is(err, db.ErrMonthlyQuotaExceeded):
		writeError(w, http.StatusConflict, NewError(CodeQuotaExceeded, "Límite mensual de unidades alcanzado"))
	case errors.Is(err, db.ErrNotPending), errors.Is(err, workflow.ErrLoanNotPending):
		writeError(w, http.StatusConflict, ConflictErr("resource is no longer pending"))
	case errors.Is(err, workflow.ErrLoanNotReturnable):
		writeError(w, http.StatusConflict, ConflictErr("loan is not in a returnable state"))
	case errors.Is(err, workflow.ErrItemNotAssignable):
		writeError(w, http.StatusConflict, ConflictErr("item is not assignable"))
	case errors.Is(err, workflow.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, NotFound("request"))
	case errors.Is(err, workflow.ErrLoanNotFound):
		writeError(w, http.StatusNotFound, NotFound("loan"))
	case errors.Is(err, db.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, NotFound("resource"))
	default:
		logger := middleware.GetLoggerFromContext(r.Context())
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, InternalError("internal server error"))
	}
}
