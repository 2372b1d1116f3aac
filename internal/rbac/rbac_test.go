package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigainv/siga-backend/internal/rbac"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts known roles", func(t *testing.T) {
		role, ok := rbac.ParseRole("administrador")
		require.True(t, ok)
		assert.Equal(t, rbac.RoleAdministrator, role)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		role, ok := rbac.ParseRole("  Lider_Inventario ")
		require.True(t, ok)
		assert.Equal(t, rbac.RoleInventoryLead, role)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, ok := rbac.ParseRole("superuser")
		assert.False(t, ok)
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, ok := rbac.ParseRole("")
		assert.False(t, ok)
	})
}

func TestPermissionsForUnknownRoleDeniesEverything(t *testing.T) {
	perms := rbac.PermissionsFor(rbac.Role("made_up_role"))

	assert.Empty(t, perms.Modules)
	assert.Empty(t, perms.Actions)
	assert.Equal(t, rbac.FilterOwn, perms.OfficeFilter)

	assert.False(t, rbac.HasModuleAccess("made_up_role", rbac.ModuleMaterials))
	assert.False(t, rbac.HasActionPermission("made_up_role", rbac.ModuleMaterials, rbac.ActionView))
}

func TestAdministratorSeesEverything(t *testing.T) {
	assert.True(t, rbac.CanViewAll(rbac.RoleAdministrator))
	assert.Equal(t, rbac.FilterAll, rbac.OfficeFilterFor(rbac.RoleAdministrator))

	for _, module := range []rbac.Module{
		rbac.ModuleDashboard, rbac.ModuleMaterials, rbac.ModuleCorporate,
		rbac.ModuleLoans, rbac.ModuleReports, rbac.ModuleOffices,
	} {
		assert.True(t, rbac.HasModuleAccess(rbac.RoleAdministrator, module),
			"administrator should access %s", module)
	}
	assert.True(t, rbac.HasActionPermission(rbac.RoleAdministrator, rbac.ModuleMaterials, rbac.ActionApprove))
	assert.True(t, rbac.HasActionPermission(rbac.RoleAdministrator, rbac.ModuleLoans, rbac.ActionReturn))
}

func TestInventoryLeadCanResolveRequests(t *testing.T) {
	assert.True(t, rbac.CanViewAll(rbac.RoleInventoryLead))
	assert.True(t, rbac.HasActionPermission(rbac.RoleInventoryLead, rbac.ModuleRequests, rbac.ActionApprove))
	assert.True(t, rbac.HasActionPermission(rbac.RoleInventoryLead, rbac.ModuleRequests, rbac.ActionPartialApprove))
	assert.True(t, rbac.HasActionPermission(rbac.RoleInventoryLead, rbac.ModuleRequests, rbac.ActionReject))
}

func TestOfficeRoleIsScopedToItsOffice(t *testing.T) {
	role := rbac.RoleOfficeCali

	assert.False(t, rbac.CanViewAll(role))
	assert.NotEqual(t, rbac.FilterAll, rbac.OfficeFilterFor(role))

	assert.True(t, rbac.HasModuleAccess(role, rbac.ModuleMaterials))
	assert.True(t, rbac.HasActionPermission(role, rbac.ModuleRequests, rbac.ActionCreate))

	t.Run("cannot create materials", func(t *testing.T) {
		for _, role := range []rbac.Role{
			rbac.RoleOfficeCali, rbac.RoleOfficeMedellin, rbac.RoleOfficeTunja,
			rbac.RoleOfficeKennedy, rbac.RoleOfficeRegular,
		} {
			assert.False(t, rbac.HasActionPermission(role, rbac.ModuleMaterials, rbac.ActionCreate),
				"%s should not create materials", role)
		}
		assert.True(t, rbac.HasActionPermission(rbac.RoleOfficeCOQ, rbac.ModuleMaterials, rbac.ActionCreate))
	})

	t.Run("cannot approve or reject", func(t *testing.T) {
		assert.False(t, rbac.HasActionPermission(role, rbac.ModuleRequests, rbac.ActionApprove))
		assert.False(t, rbac.HasActionPermission(role, rbac.ModuleRequests, rbac.ActionPartialApprove))
		assert.False(t, rbac.HasActionPermission(role, rbac.ModuleRequests, rbac.ActionReject))
	})

	t.Run("cannot manage offices", func(t *testing.T) {
		assert.False(t, rbac.HasActionPermission(role, rbac.ModuleOffices, rbac.ActionCreate))
		assert.False(t, rbac.HasActionPermission(role, rbac.ModuleOffices, rbac.ActionDelete))
	})
}

func TestRegularOfficeRoleHasNoPrivilegedActions(t *testing.T) {
	role := rbac.RoleOfficeRegular
	for _, action := range []rbac.Action{
		rbac.ActionApprove, rbac.ActionPartialApprove, rbac.ActionReject,
		rbac.ActionAssign, rbac.ActionManage,
	} {
		for _, module := range []rbac.Module{
			rbac.ModuleMaterials, rbac.ModuleCorporate, rbac.ModuleLoans, rbac.ModuleOffices,
		} {
			assert.False(t, rbac.HasActionPermission(role, module, action),
				"%s should not have %s on %s", role, action, module)
		}
	}
}

func TestAssignRoleByOffice(t *testing.T) {
	assert.Equal(t, rbac.RoleOfficeCali, rbac.AssignRoleByOffice("Cali"))
	assert.Equal(t, rbac.RoleOfficeMedellin, rbac.AssignRoleByOffice("medellin"))
	assert.Equal(t, rbac.RoleOfficeCOQ, rbac.AssignRoleByOffice("SEDE COQ"))
	assert.Equal(t, rbac.RoleOfficeRegular, rbac.AssignRoleByOffice("Oficina Nueva"))
}
