package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/workflow"
)

type corporateItemResponse struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	SupplierID      int64           `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	UnitValue       decimal.Decimal `json:"unit_value"`
	Quantity        int32           `json:"quantity"`
	MinimumQuantity int32           `json:"minimum_quantity"`
	Location        string          `json:"location"`
	Assignable      bool            `json:"assignable"`
	ImagePath       *string         `json:"image_path,omitempty"`
}

func toCorporateItemResponse(i db.CorporateItem) corporateItemResponse {
	return corporateItemResponse{
		ID:              i.ID,
		Code:            i.Code,
		Name:            i.Name,
		Description:     i.Description,
		CategoryID:      i.CategoryID,
		CategoryName:    i.CategoryName,
		SupplierID:      i.SupplierID,
		SupplierName:    i.SupplierName,
		UnitValue:       i.UnitValue,
		Quantity:        i.Quantity,
		MinimumQuantity: i.MinimumQuantity,
		Location:        i.Location,
		Assignable:      i.Assignable,
		ImagePath:       i.ImagePath,
	}
}

// ListCorporateItems supports ?category_id=, ?assignable=true and
// ?low_stock=true filter variants.
func (s *Server) ListCorporateItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.database.Queries().ListCorporateItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	items = filterCorporateItems(items, r)
	limit, offset := parsePagination(r)
	page := paginate(items, limit, offset)
	out := make([]corporateItemResponse, 0, len(page))
	for _, i := range page {
		out = append(out, toCorporateItemResponse(i))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(items),
	})
}

func filterCorporateItems(items []db.CorporateItem, r *http.Request) []db.CorporateItem {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category_id"), 10, 64)
	assignableOnly := q.Get("assignable") == "true"
	lowStockOnly := q.Get("low_stock") == "true"
	if categoryID == 0 && !assignableOnly && !lowStockOnly {
		return items
	}

	filtered := make([]db.CorporateItem, 0, len(items))
	for _, i := range items {
		if categoryID != 0 && i.CategoryID != categoryID {
			continue
		}
		if assignableOnly && !i.Assignable {
			continue
		}
		if lowStockOnly && i.Quantity > i.MinimumQuantity {
			continue
		}
		filtered = append(filtered, i)
	}
	return filtered
}

// CorporateStats summarizes the corporate pool for the dashboard cards.
func (s *Server) CorporateStats(w http.ResponseWriter, r *http.Request) {
	items, err := s.database.Queries().ListCorporateItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totalValue := decimal.Zero
	var lowStock, assignable int
	for _, i := range items {
		totalValue = totalValue.Add(i.UnitValue.Mul(decimal.NewFromInt32(i.Quantity)))
		if i.Quantity <= i.MinimumQuantity {
			lowStock++
		}
		if i.Assignable {
			assignable++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_items":      len(items),
		"total_value":      totalValue,
		"low_stock_items":  lowStock,
		"assignable_items": assignable,
	})
}

func (s *Server) GetCorporateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item id", nil))
		return
	}
	item, err := s.database.Queries().GetCorporateItemByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCorporateItemResponse(item))
}

type corporateItemInput struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"category_id"`
	SupplierID      int64           `json:"supplier_id"`
	UnitValue       decimal.Decimal `json:"unit_value"`
	Quantity        int32           `json:"quantity"`
	MinimumQuantity int32           `json:"minimum_quantity"`
	Location        string          `json:"location"`
	Assignable      bool            `json:"assignable"`
}

func (in corporateItemInput) validate(requireCode bool) []ErrorDetail {
	var details []ErrorDetail
	if requireCode && in.Code == "" {
		details = append(details, ErrorDetail{Field: "code", Message: "is required"})
	}
	if in.Name == "" {
		details = append(details, ErrorDetail{Field: "name", Message: "is required"})
	}
	if in.CategoryID <= 0 {
		details = append(details, ErrorDetail{Field: "category_id", Message: "is required"})
	}
	if in.SupplierID <= 0 {
		details = append(details, ErrorDetail{Field: "supplier_id", Message: "is required"})
	}
	if in.Quantity < 0 {
		details = append(details, ErrorDetail{Field: "quantity", Message: "must not be negative"})
	}
	return details
}

func (s *Server) CreateCorporateItem(w http.ResponseWriter, r *http.Request) {
	var in corporateItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(true); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item", details))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	id, err := s.database.Queries().CreateCorporateItem(r.Context(), db.CreateCorporateItemParams{
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		UnitValue:       in.UnitValue,
		Quantity:        in.Quantity,
		MinimumQuantity: in.MinimumQuantity,
		Location:        in.Location,
		Assignable:      in.Assignable,
		CreatedBy:       sess.DisplayName,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) UpdateCorporateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item id", nil))
		return
	}
	var in corporateItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if details := in.validate(false); len(details) > 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item", details))
		return
	}
	err := s.database.Queries().UpdateCorporateItem(r.Context(), db.UpdateCorporateItemParams{
		ID:              id,
		Name:            in.Name,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		UnitValue:       in.UnitValue,
		Quantity:        in.Quantity,
		MinimumQuantity: in.MinimumQuantity,
		Location:        in.Location,
		Assignable:      in.Assignable,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) DeleteCorporateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item id", nil))
		return
	}
	if err := s.database.Queries().DeactivateCorporateItem(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type assignInput struct {
	OfficeID int64 `json:"office_id"`
	Quantity int32 `json:"quantity"`
}

func (s *Server) AssignCorporateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item id", nil))
		return
	}
	var in assignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	assignment, err := s.corporate.Assign(r.Context(), sess, workflow.AssignInput{
		ItemID:   id,
		OfficeID: in.OfficeID,
		Quantity: in.Quantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

func (s *Server) ListItemAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid item id", nil))
		return
	}
	assignments, err := s.database.Queries().ListAssignmentsByItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.database.Queries().ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.database.Queries().ListSuppliers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}
