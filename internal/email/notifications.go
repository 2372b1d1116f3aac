package email

import (
	"fmt"
	"strings"

	"github.com/sigainv/siga-backend/internal/db"
)

// LowStockMessage builds the alert sent when a material reaches its minimum
// quantity.
func LowStockMessage(m db.Material) (subject, body string) {
	subject = fmt.Sprintf("Alerta de stock: %s", m.Name)
	body = fmt.Sprintf(
		"El material %q quedó con %d unidades disponibles (mínimo configurado: %d).\n"+
			"Revise el inventario y reponga el stock si corresponde.",
		m.Name, m.AvailableQuantity, m.MinimumQuantity)
	return subject, body
}

// OverdueLoansMessage summarizes loans past their expected return date.
func OverdueLoansMessage(loans []db.Loan) (subject, body string) {
	subject = fmt.Sprintf("Préstamos vencidos: %d", len(loans))

	var b strings.Builder
	b.WriteString("Los siguientes préstamos superaron su fecha de devolución esperada:\n\n")
	for _, l := range loans {
		fmt.Fprintf(&b, "- %s x%d, oficina %s, esperado %s, solicitante %s\n",
			l.ElementName, l.Quantity, l.OfficeName,
			l.ExpectedReturnDate.Format("2006-01-02"), l.RequesterName)
	}
	return subject, b.String()
}
