package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigainv/siga-backend/internal/rbac"
)

type record struct {
	id       int
	officeID int64
}

func officeOf(r record) int64 { return r.officeID }

func TestFilterByOffice(t *testing.T) {
	records := []record{
		{id: 1, officeID: 10},
		{id: 2, officeID: 20},
		{id: 3, officeID: 10},
		{id: 4, officeID: 30},
		{id: 5, officeID: 10},
	}

	t.Run("unrestricted scope returns input unchanged", func(t *testing.T) {
		scope := rbac.NewScope(rbac.RoleAdministrator, 10)
		got := rbac.FilterByOffice(scope, records, officeOf)
		assert.Equal(t, records, got)
	})

	t.Run("restricted scope keeps only own office in order", func(t *testing.T) {
		scope := rbac.NewScope(rbac.RoleOfficeCali, 10)
		got := rbac.FilterByOffice(scope, records, officeOf)
		assert.Equal(t, []record{{id: 1, officeID: 10}, {id: 3, officeID: 10}, {id: 5, officeID: 10}}, got)
	})

	t.Run("restricted scope with no matches returns empty", func(t *testing.T) {
		scope := rbac.NewScope(rbac.RoleOfficeCali, 99)
		got := rbac.FilterByOffice(scope, records, officeOf)
		assert.Empty(t, got)
	})

	t.Run("empty input", func(t *testing.T) {
		scope := rbac.NewScope(rbac.RoleOfficeCali, 10)
		got := rbac.FilterByOffice(scope, nil, officeOf)
		assert.Empty(t, got)
	})

	t.Run("unknown role is restricted", func(t *testing.T) {
		scope := rbac.NewScope(rbac.Role("bogus"), 20)
		got := rbac.FilterByOffice(scope, records, officeOf)
		assert.Equal(t, []record{{id: 2, officeID: 20}}, got)
	})
}

func TestCanAccessOffice(t *testing.T) {
	admin := rbac.NewScope(rbac.RoleAdministrator, 10)
	assert.True(t, admin.CanAccessOffice(10))
	assert.True(t, admin.CanAccessOffice(99))

	office := rbac.NewScope(rbac.RoleOfficeTunja, 10)
	assert.True(t, office.CanAccessOffice(10))
	assert.False(t, office.CanAccessOffice(99))
}
