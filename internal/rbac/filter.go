package rbac

// Scope is the office visibility derived from one authenticated session.
// Handlers build it once per request and pass it into every list query
// and point check; they must never re-implement the role comparison
// inline.
type Scope struct {
	// ViewAll short-circuits filtering for the unrestricted roles.
	ViewAll bool
	// OfficeID is the session's own office, used when ViewAll is false.
	OfficeID int64
}

// NewScope derives the visibility scope for a role bound to officeID.
func NewScope(role Role, officeID int64) Scope {
	return Scope{
		ViewAll:  CanViewAll(role),
		OfficeID: officeID,
	}
}

// FilterByOffice returns the records visible under the scope. Unrestricted
// scopes get the input back unmodified (same slice, same order); restricted
// scopes get exactly the records whose office matches their own, relative
// order preserved.
func FilterByOffice[T any](scope Scope, records []T, officeID func(T) int64) []T {
	if scope.ViewAll {
		return records
	}
	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if officeID(r) == scope.OfficeID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// CanAccessOffice is the point-check companion of FilterByOffice, used
// before single-record detail views and state transitions.
func (s Scope) CanAccessOffice(officeID int64) bool {
	if s.ViewAll {
		return true
	}
	return officeID == s.OfficeID
}
