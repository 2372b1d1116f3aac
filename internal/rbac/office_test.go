package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigainv/siga-backend/internal/rbac"
)

func TestNormalizeOffice(t *testing.T) {
	t.Run("uppercases and trims", func(t *testing.T) {
		assert.Equal(t, "CALI", rbac.NormalizeOffice("  cali "))
		assert.Equal(t, "PEREIRA", rbac.NormalizeOffice("Pereira"))
	})

	t.Run("resolves aliases", func(t *testing.T) {
		assert.Equal(t, "MEDELLÍN", rbac.NormalizeOffice("Medellin"))
		assert.Equal(t, "POLO CLUB", rbac.NormalizeOffice("Oficina Polo"))
		assert.Equal(t, "NOGAL", rbac.NormalizeOffice("El Nogal"))
		assert.Equal(t, "COQ", rbac.NormalizeOffice("Sede COQ"))
		assert.Equal(t, "KENNEDY", rbac.NormalizeOffice("Bogota Kennedy"))
	})

	t.Run("unmapped names pass through normalized", func(t *testing.T) {
		assert.Equal(t, "OFICINA NUEVA", rbac.NormalizeOffice("Oficina Nueva"))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{"Medellin", "  cali ", "Sede COQ", "Oficina Nueva", "MEDELLÍN"}
		for _, in := range inputs {
			once := rbac.NormalizeOffice(in)
			assert.Equal(t, once, rbac.NormalizeOffice(once), "normalizing %q twice changed the result", in)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", rbac.NormalizeOffice("   "))
	})
}
