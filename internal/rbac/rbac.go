// Package rbac holds the static role/permission table and the office
// visibility rules. Every permission lookup is default-deny: an unknown
// role, module, or action yields false, never an error.
package rbac

import "strings"

// Role is the closed set of roles. Raw role strings coming from storage
// are validated once, at session establishment, through ParseRole.
type Role string

const (
	RoleAdministrator     Role = "administrador"
	RoleInventoryLead     Role = "lider_inventario"
	RoleOfficeCOQ         Role = "oficina_coq"
	RoleOfficeCali        Role = "oficina_cali"
	RoleOfficePereira     Role = "oficina_pereira"
	RoleOfficeNeiva       Role = "oficina_neiva"
	RoleOfficeKennedy     Role = "oficina_kennedy"
	RoleOfficeBucaramanga Role = "oficina_bucaramanga"
	RoleOfficePoloClub    Role = "oficina_polo_club"
	RoleOfficeNogal       Role = "oficina_nogal"
	RoleOfficeTunja       Role = "oficina_tunja"
	RoleOfficeCartagena   Role = "oficina_cartagena"
	RoleOfficeMorato      Role = "oficina_morato"
	RoleOfficeMedellin    Role = "oficina_medellin"
	RoleOfficeCedritos    Role = "oficina_cedritos"
	RoleOfficeLourdes     Role = "oficina_lourdes"
	RoleOfficeRegular     Role = "oficina_regular"
)

// Module names as used for navigation access checks.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleMaterials Module = "material_pop"
	ModuleCorporate Module = "inventario_corporativo"
	ModuleLoans     Module = "prestamo_material"
	ModuleReports   Module = "reportes"
	ModuleOffices   Module = "oficinas"
	ModuleRequests  Module = "solicitudes"
)

type Action string

const (
	ActionView           Action = "view"
	ActionViewOwn        Action = "view_own"
	ActionViewAll        Action = "view_all"
	ActionCreate         Action = "create"
	ActionEdit           Action = "edit"
	ActionDelete         Action = "delete"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionPartialApprove Action = "partial_approve"
	ActionReturn         Action = "return"
	ActionAssign         Action = "assign"
	ActionManage         Action = "manage"
)

// Office visibility filters. A filter is either FilterAll, FilterOwn, or
// a canonical office key (the role sees only its named office).
const (
	FilterAll = "all"
	FilterOwn = "own"
)

// Permissions is one row of the role table.
type Permissions struct {
	Modules      []Module
	Actions      map[Module][]Action
	OfficeFilter string
}

var privilegedActions = map[Module][]Action{
	ModuleMaterials: {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionApprove, ActionReject, ActionPartialApprove},
	ModuleRequests:  {ActionView, ActionCreate, ActionApprove, ActionReject, ActionPartialApprove},
	ModuleOffices:   {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionManage},
	ModuleReports:   {ActionViewAll},
	ModuleCorporate: {ActionView, ActionCreate, ActionEdit, ActionDelete, ActionAssign, ActionManage},
	ModuleLoans:     {ActionView, ActionCreate, ActionApprove, ActionReject, ActionPartialApprove, ActionReturn, ActionManage},
}

// officeRolePermissions builds the shared permission set of the
// per-office requesting roles, parameterized only by office key.
func officeRolePermissions(officeKey string) Permissions {
	return Permissions{
		Modules: []Module{ModuleDashboard, ModuleMaterials, ModuleLoans, ModuleReports, ModuleOffices, ModuleRequests},
		Actions: map[Module][]Action{
			ModuleRequests: {ActionCreate},
			ModuleOffices:  {ActionView},
			ModuleLoans:    {ActionViewOwn, ActionCreate},
			ModuleReports:  {ActionViewOwn},
		},
		OfficeFilter: officeKey,
	}
}

var rolePermissions = map[Role]Permissions{
	RoleAdministrator: {
		Modules:      []Module{ModuleDashboard, ModuleMaterials, ModuleCorporate, ModuleLoans, ModuleReports, ModuleOffices, ModuleRequests},
		Actions:      privilegedActions,
		OfficeFilter: FilterAll,
	},
	RoleInventoryLead: {
		Modules:      []Module{ModuleDashboard, ModuleMaterials, ModuleCorporate, ModuleLoans, ModuleReports, ModuleOffices, ModuleRequests},
		Actions:      privilegedActions,
		OfficeFilter: FilterAll,
	},
	RoleOfficeCOQ: {
		Modules: []Module{ModuleDashboard, ModuleMaterials, ModuleLoans, ModuleReports},
		Actions: map[Module][]Action{
			ModuleMaterials: {ActionView, ActionCreate},
			ModuleRequests:  {ActionView, ActionCreate},
			ModuleLoans:     {ActionView, ActionCreate},
			ModuleReports:   {ActionViewOwn},
		},
		OfficeFilter: "COQ",
	},
	RoleOfficeCali:        officeRolePermissions("CALI"),
	RoleOfficePereira:     officeRolePermissions("PEREIRA"),
	RoleOfficeNeiva:       officeRolePermissions("NEIVA"),
	RoleOfficeKennedy:     officeRolePermissions("KENNEDY"),
	RoleOfficeBucaramanga: officeRolePermissions("BUCARAMANGA"),
	RoleOfficePoloClub:    officeRolePermissions("POLO CLUB"),
	RoleOfficeNogal:       officeRolePermissions("NOGAL"),
	RoleOfficeTunja:       officeRolePermissions("TUNJA"),
	RoleOfficeCartagena:   officeRolePermissions("CARTAGENA"),
	RoleOfficeMorato:      officeRolePermissions("MORATO"),
	RoleOfficeMedellin:    officeRolePermissions("MEDELLÍN"),
	RoleOfficeCedritos:    officeRolePermissions("CEDRITOS"),
	RoleOfficeLourdes:     officeRolePermissions("LOURDES"),
	RoleOfficeRegular: {
		Modules: []Module{ModuleDashboard, ModuleReports},
		Actions: map[Module][]Action{
			ModuleReports: {ActionViewOwn},
		},
		OfficeFilter: FilterOwn,
	},
}

// ParseRole validates a raw role string against the closed set.
// Comparison is case-insensitive and trimmed; unknown strings report
// ok=false so the caller can reject the session outright.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := rolePermissions[r]
	return r, ok
}

// PermissionsFor returns the role's permission row. Unknown roles get an
// empty row with FilterOwn, which grants nothing.
func PermissionsFor(role Role) Permissions {
	if p, ok := rolePermissions[role]; ok {
		return p
	}
	return Permissions{OfficeFilter: FilterOwn}
}

func HasModuleAccess(role Role, module Module) bool {
	for _, m := range PermissionsFor(role).Modules {
		if m == module {
			return true
		}
	}
	return false
}

func HasActionPermission(role Role, module Module, action Action) bool {
	for _, a := range PermissionsFor(role).Actions[module] {
		if a == action {
			return true
		}
	}
	return false
}

// OfficeFilterFor returns the role's visibility filter: FilterAll,
// FilterOwn, or a canonical office key.
func OfficeFilterFor(role Role) string {
	return PermissionsFor(role).OfficeFilter
}

// CanViewAll reports whether the role sees records of every office.
func CanViewAll(role Role) bool {
	return OfficeFilterFor(role) == FilterAll
}

// AssignRoleByOffice maps a canonical office to its requesting role.
// Offices without a dedicated role fall back to RoleOfficeRegular.
var officeRoles = map[string]Role{
	"COQ":         RoleOfficeCOQ,
	"CALI":        RoleOfficeCali,
	"MEDELLÍN":    RoleOfficeMedellin,
	"BUCARAMANGA": RoleOfficeBucaramanga,
	"POLO CLUB":   RoleOfficePoloClub,
	"NOGAL":       RoleOfficeNogal,
	"TUNJA":       RoleOfficeTunja,
	"CARTAGENA":   RoleOfficeCartagena,
	"MORATO":      RoleOfficeMorato,
	"CEDRITOS":    RoleOfficeCedritos,
	"LOURDES":     RoleOfficeLourdes,
	"PEREIRA":     RoleOfficePereira,
	"NEIVA":       RoleOfficeNeiva,
	"KENNEDY":     RoleOfficeKennedy,
}

func AssignRoleByOffice(officeName string) Role {
	if r, ok := officeRoles[NormalizeOffice(officeName)]; ok {
		return r
	}
	return RoleOfficeRegular
}
