package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/middleware"
	"github.com/sigainv/siga-backend/internal/rbac"
)

type materialResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	AvailableQuantity int32           `json:"available_quantity"`
	MinimumQuantity   int32           `json:"minimum_quantity"`
	TotalValue        decimal.Decimal `json:"total_value"`
	OfficeID          int64           `json:"office_id"`
	ImagePath         *string         `json:"image_path,omitempty"`
	LowStock          bool            `json:"low_stock"`
}

func toMaterialResponse(m db.Material) materialResponse {
	return materialResponse{
		ID:                m.ID,
		Name:              m.Name,
		UnitValue:         m.UnitValue,
		AvailableQuantity: m.AvailableQuantity,
		MinimumQuantity:   m.MinimumQuantity,
		TotalValue:        m.TotalValue(),
		OfficeID:          m.OfficeID,
		ImagePath:         m.ImagePath,
		LowStock:          m.AvailableQuantity <= m.MinimumQuantity,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListMaterials returns materials filtered to the session's office scope.
func (s *Server) ListMaterials(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var (
		materials []db.Material
		err       error
	)
	if rbac.CanViewAll(sess.Role) {
		materials, err = s.database.Queries().ListMaterials(r.Context())
	} else {
		materials, err = s.database.Queries().ListMaterialsByOffice(r.Context(), sess.OfficeID)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	limit, offset := parsePagination(r)
	page := paginate(materials, limit, offset)
	out := make([]materialResponse, 0, len(page))
	for _, m := range page {
		out = append(out, toMaterialResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(materials),
	})
}

func (s *Server) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material id", nil))
		return
	}
	material, err := s.database.Queries().GetMaterialByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	if !rbac.NewScope(sess.Role, sess.OfficeID).CanAccessOffice(material.OfficeID) {
		writeError(w, http.StatusNotFound, NotFound("material"))
		return
	}
	writeJSON(w, http.StatusOK, toMaterialResponse(material))
}

type materialInput struct {
	Name              string          `json:"name"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	AvailableQuantity int32           `json:"available_quantity"`
	MinimumQuantity   int32           `json:"minimum_quantity"`
	OfficeID          int64           `json:"office_id"`
}

func (in materialInput) validate() []ErrorDetail {
	var details []ErrorDetail
	if in.Name == "" {
		details = append(details, ErrorDetail{Field: "name", Message: "is required"})
	}
	if in.UnitValue.IsNegative() {
		details = append(details, ErrorDetail{Field: "unit_value", Message: "must not be negative"})
	}
	if in.AvailableQuantity < 0 {
		details = append(details, ErrorDetail{Field: "available_quantity", Message: "must not be negative"})
	}
	if in.MinimumQuantity < 0 {
		details = append(details, ErrorDetail{Field: "minimum_quantity", Message: "must not be negative"})
	}
	return details
}

func (s *Server) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var in materialInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material", details))
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())
	officeID := in.OfficeID
	if officeID == 0 || !rbac.CanViewAll(sess.Role) {
		officeID = sess.OfficeID
	}

	id, err := s.database.Queries().CreateMaterial(r.Context(), db.CreateMaterialParams{
		Name:              in.Name,
		UnitValue:         in.UnitValue,
		AvailableQuantity: in.AvailableQuantity,
		MinimumQuantity:   in.MinimumQuantity,
		OfficeID:          officeID,
		CreatedBy:         sess.DisplayName,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	middleware.GetLoggerFromContext(r.Context()).Info("Material created",
		"material_id", id, "name", in.Name)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material id", nil))
		return
	}
	var in materialInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material", details))
		return
	}

	err := s.database.Queries().UpdateMaterial(r.Context(), db.UpdateMaterialParams{
		ID:                id,
		Name:              in.Name,
		UnitValue:         in.UnitValue,
		AvailableQuantity: in.AvailableQuantity,
		MinimumQuantity:   in.MinimumQuantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material id", nil))
		return
	}
	if err := s.database.Queries().DeactivateMaterial(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadMaterialImage stores a resized image for the material and saves its
// public path.
func (s *Server) UploadMaterialImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid material id", nil))
		return
	}
	material, err := s.database.Queries().GetMaterialByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(s.cfg.Uploads.MaxSizeBytes); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid multipart form", nil))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("image file is required", nil))
		return
	}
	defer file.Close()

	path, err := s.images.Save(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr(err.Error(), nil))
		return
	}

	err = s.database.Queries().UpdateMaterial(r.Context(), db.UpdateMaterialParams{
		ID:                id,
		Name:              material.Name,
		UnitValue:         material.UnitValue,
		AvailableQuantity: material.AvailableQuantity,
		MinimumQuantity:   material.MinimumQuantity,
		ImagePath:         &path,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image_path": path})
}
