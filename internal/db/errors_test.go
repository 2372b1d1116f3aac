package db_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigainv/siga-backend/internal/db"
)

func TestTranslateStoreError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, db.TranslateStoreError(nil))
	})

	t.Run("monthly quota text", func(t *testing.T) {
		err := errors.New("ERROR: Límite mensual de 1000 unidades alcanzado (SQLSTATE P0001)")
		assert.ErrorIs(t, db.TranslateStoreError(err), db.ErrMonthlyQuotaExceeded)
	})

	t.Run("insufficient stock texts", func(t *testing.T) {
		for _, msg := range []string{
			"ERROR: Stock insuficiente para el material",
			"ERROR: La cantidad solicitada excede el inventario disponible",
		} {
			assert.ErrorIs(t, db.TranslateStoreError(errors.New(msg)), db.ErrInsufficientStock, msg)
		}
	})

	t.Run("invalid quantity texts", func(t *testing.T) {
		for _, msg := range []string{
			"ERROR: Cantidad inválida",
			"ERROR: la cantidad no válida para la entrega",
		} {
			assert.ErrorIs(t, db.TranslateStoreError(errors.New(msg)), db.ErrInvalidQuantity, msg)
		}
	})

	t.Run("unrelated errors pass through unchanged", func(t *testing.T) {
		err := errors.New("connection refused")
		assert.Equal(t, err, db.TranslateStoreError(err))
	})
}
