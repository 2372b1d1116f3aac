package api

import (
	"encoding/json"
	"net/http"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
)

type officeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Director    string `json:"director"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	IsPrincipal bool   `json:"is_principal"`
}

// ListOffices returns the offices visible to the session. Office-scoped
// roles only see their own office.
func (s *Server) ListOffices(w http.ResponseWriter, r *http.Request) {
	offices, err := s.database.Queries().ListOffices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	scope := rbac.NewScope(sess.Role, sess.OfficeID)
	visible := rbac.FilterByOffice(scope, offices, func(o db.Office) int64 { return o.ID })

	out := make([]officeResponse, 0, len(visible))
	for _, o := range visible {
		out = append(out, officeResponse{
			ID:          o.ID,
			Name:        o.Name,
			Director:    o.Director,
			Location:    o.Location,
			Email:       o.Email,
			IsPrincipal: o.IsPrincipal,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// OfficeDetail returns one office with its material inventory and the
// request counts per state.
func (s *Server) OfficeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office id", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	scope := rbac.NewScope(sess.Role, sess.OfficeID)
	if !scope.CanAccessOffice(id) {
		writeError(w, http.StatusForbidden, PermissionDenied("office not visible to this user"))
		return
	}

	office, err := s.database.Queries().GetOfficeByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	materials, err := s.database.Queries().ListMaterialsByOffice(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	counts, err := s.database.Queries().CountRequestsByState(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	materialOut := make([]materialResponse, 0, len(materials))
	for _, m := range materials {
		materialOut = append(materialOut, toMaterialResponse(m))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"office": officeResponse{
			ID:          office.ID,
			Name:        office.Name,
			Director:    office.Director,
			Location:    office.Location,
			Email:       office.Email,
			IsPrincipal: office.IsPrincipal,
		},
		"materials":      materialOut,
		"request_states": counts,
	})
}

type officeInput struct {
	Name     string `json:"name"`
	Director string `json:"director"`
	Location string `json:"location"`
	Email    string `json:"email"`
}

func (in officeInput) validate() []ErrorDetail {
	var details []ErrorDetail
	if in.Name == "" {
		details = append(details, ErrorDetail{Field: "name", Message: "is required"})
	}
	return details
}

func (s *Server) CreateOffice(w http.ResponseWriter, r *http.Request) {
	var in officeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office", details))
		return
	}

	name := rbac.NormalizeOffice(in.Name)
	id, err := s.database.Queries().CreateOffice(r.Context(), db.CreateOfficeParams{
		Name:     name,
		Director: in.Director,
		Location: in.Location,
		Email:    in.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": name})
}

func (s *Server) UpdateOffice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office id", nil))
		return
	}
	var in officeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office", details))
		return
	}
	err := s.database.Queries().UpdateOffice(r.Context(), db.UpdateOfficeParams{
		ID:       id,
		Name:     rbac.NormalizeOffice(in.Name),
		Director: in.Director,
		Location: in.Location,
		Email:    in.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) DeleteOffice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid office id", nil))
		return
	}
	if err := s.database.Queries().DeactivateOffice(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
