package db

import (
	"errors"
	"strings"
)

// Domain errors raised by the data layer. Callers branch on these with
// errors.Is instead of matching message text.
var (
	ErrNotFound             = errors.New("record not found")
	ErrNotPending           = errors.New("request is not pending")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrMonthlyQuotaExceeded = errors.New("monthly quota exceeded")
	ErrInvalidQuantity      = errors.New("invalid quantity")
)

// TranslateStoreError is the compatibility shim for databases that still
// run the legacy procedures, which signal business-rule violations through
// message text. The services raise the typed errors directly and wrap the
// stock mutations with this mapping, so a legacy trigger surfacing one of
// the old texts still comes back as the typed error.
func TranslateStoreError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Límite mensual"):
		return ErrMonthlyQuotaExceeded
	case strings.Contains(msg, "Stock insuficiente"), strings.Contains(msg, "excede el inventario"):
		return ErrInsufficientStock
	case strings.Contains(msg, "Cantidad inválida"), strings.Contains(msg, "cantidad no válida"):
		return ErrInvalidQuantity
	default:
		return err
	}
}
