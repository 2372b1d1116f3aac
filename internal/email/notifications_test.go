package email_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/email"
)

func TestLowStockMessage(t *testing.T) {
	subject, body := email.LowStockMessage(db.Material{
		Name:              "Pendones",
		AvailableQuantity: 3,
		MinimumQuantity:   5,
	})

	assert.Contains(t, subject, "Pendones")
	assert.Contains(t, body, "3 unidades")
	assert.Contains(t, body, "mínimo configurado: 5")
}

func TestOverdueLoansMessage(t *testing.T) {
	due := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	subject, body := email.OverdueLoansMessage([]db.Loan{
		{ElementName: "Proyector", Quantity: 2, OfficeName: "CALI", ExpectedReturnDate: due, RequesterName: "Ana"},
		{ElementName: "Carpa", Quantity: 1, OfficeName: "TUNJA", ExpectedReturnDate: due, RequesterName: "Luis"},
	})

	assert.Contains(t, subject, "2")
	assert.Contains(t, body, "Proyector x2")
	assert.Contains(t, body, "Carpa x1")
	assert.Contains(t, body, "2026-08-01")
	assert.Contains(t, body, "oficina CALI")
}
