package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
)

// reportPeriod reads year/month query params, defaulting to the current
// month.
func reportPeriod(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if raw := r.URL.Query().Get("year"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &year); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid year")
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &month); err != nil || month < 1 || month > 12 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid month")
		}
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func (s *Server) reportRequests(r *http.Request) ([]db.Request, error) {
	from, to, err := reportPeriod(r)
	if err != nil {
		return nil, err
	}
	sess, _ := auth.SessionFromContext(r.Context())
	officeID := sess.OfficeID
	if rbac.CanViewAll(sess.Role) {
		officeID = 0
		if raw := r.URL.Query().Get("office_id"); raw != "" {
			fmt.Sscanf(raw, "%d", &officeID)
		}
	}
	return s.database.Queries().ListRequestsByPeriod(r.Context(), db.ListRequestsByMonthParams{
		OfficeID: officeID,
		From:     from,
		To:       to,
	})
}

// RequestsReport returns the month's requests with per-state totals.
func (s *Server) RequestsReport(w http.ResponseWriter, r *http.Request) {
	requests, err := s.reportRequests(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr(err.Error(), nil))
		return
	}

	totals := map[string]int{}
	units := 0
	for _, req := range requests {
		totals[req.StateName]++
		if req.StateID != db.RequestStateRejected {
			units += int(req.Quantity)
		}
	}

	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests":        out,
		"totals_by_state": totals,
		"units_requested": units,
	})
}

func (s *Server) reportMaterials(r *http.Request) ([]db.Material, error) {
	sess, _ := auth.SessionFromContext(r.Context())
	if rbac.CanViewAll(sess.Role) {
		return s.database.Queries().ListMaterials(r.Context())
	}
	return s.database.Queries().ListMaterialsByOffice(r.Context(), sess.OfficeID)
}

// MaterialsReport returns the visible inventory with total values and the
// low-stock subset.
func (s *Server) MaterialsReport(w http.ResponseWriter, r *http.Request) {
	materials, err := s.reportMaterials(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totalValue := decimal.Zero
	lowStock := make([]materialResponse, 0)
	out := make([]materialResponse, 0, len(materials))
	for _, m := range materials {
		totalValue = totalValue.Add(m.TotalValue())
		resp := toMaterialResponse(m)
		out = append(out, resp)
		if m.AvailableQuantity <= m.MinimumQuantity {
			lowStock = append(lowStock, resp)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"materials":   out,
		"total_value": totalValue,
		"low_stock":   lowStock,
	})
}

// ExportMaterialsCSV streams the visible inventory as a CSV download.
func (s *Server) ExportMaterialsCSV(w http.ResponseWriter, r *http.Request) {
	materials, err := s.reportMaterials(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	offices, err := s.database.Queries().ListOffices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	officeNames := make(map[int64]string, len(offices))
	for _, o := range offices {
		officeNames[o.ID] = o.Name
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventario.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{
		"id", "material", "oficina", "valor_unitario", "cantidad_disponible",
		"cantidad_minima", "valor_total",
	})
	for _, m := range materials {
		cw.Write([]string{
			fmt.Sprintf("%d", m.ID),
			m.Name,
			officeNames[m.OfficeID],
			m.UnitValue.String(),
			fmt.Sprintf("%d", m.AvailableQuantity),
			fmt.Sprintf("%d", m.MinimumQuantity),
			m.TotalValue().String(),
		})
	}
}

// MaterialDetailReport returns one material with its request history.
func (s *Server) MaterialDetailReport(w http.ResponseWriter, r *http.Request) {
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
	requests, err := s.database.Queries().ListRequestsByMaterial(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())
	scope := rbac.NewScope(sess.Role, sess.OfficeID)
	requests = rbac.FilterByOffice(scope, requests, func(req db.Request) int64 { return req.OfficeID })

	history := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		history = append(history, toRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"material": toMaterialResponse(material),
		"requests": history,
	})
}

// InventoryReport returns the corporate pool grouped by category with
// per-category and overall value totals.
func (s *Server) InventoryReport(w http.ResponseWriter, r *http.Request) {
	items, err := s.database.Queries().ListCorporateItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	totalValue := decimal.Zero
	byCategory := map[string]map[string]any{}
	for _, i := range items {
		value := i.UnitValue.Mul(decimal.NewFromInt32(i.Quantity))
		totalValue = totalValue.Add(value)
		cat, ok := byCategory[i.CategoryName]
		if !ok {
			cat = map[string]any{"items": 0, "units": 0, "value": decimal.Zero}
			byCategory[i.CategoryName] = cat
		}
		cat["items"] = cat["items"].(int) + 1
		cat["units"] = cat["units"].(int) + int(i.Quantity)
		cat["value"] = cat["value"].(decimal.Decimal).Add(value)
	}

	out := make([]corporateItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toCorporateItemResponse(i))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       out,
		"by_category": byCategory,
		"total_value": totalValue,
	})
}

// ExportInventoryCSV streams the corporate pool as a CSV download.
func (s *Server) ExportInventoryCSV(w http.ResponseWriter, r *http.Request) {
	items, err := s.database.Queries().ListCorporateItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventario_corporativo.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{
		"id", "codigo", "nombre", "categoria", "proveedor", "valor_unitario",
		"cantidad", "cantidad_minima", "ubicacion", "asignable", "valor_total",
	})
	for _, i := range items {
		assignable := "no"
		if i.Assignable {
			assignable = "si"
		}
		cw.Write([]string{
			fmt.Sprintf("%d", i.ID),
			i.Code,
			i.Name,
			i.CategoryName,
			i.SupplierName,
			i.UnitValue.String(),
			fmt.Sprintf("%d", i.Quantity),
			fmt.Sprintf("%d", i.MinimumQuantity),
			i.Location,
			assignable,
			i.UnitValue.Mul(decimal.NewFromInt32(i.Quantity)).String(),
		})
	}
}

// ExportRequestsCSV streams the month's requests as a CSV download.
func (s *Server) ExportRequestsCSV(w http.ResponseWriter, r *http.Request) {
	requests, err := s.reportRequests(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr(err.Error(), nil))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="solicitudes.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{
		"id", "oficina", "material", "cantidad", "porcentaje_oficina",
		"estado", "solicitante", "valor_total", "valor_oficina",
		"valor_sede_principal", "fecha",
	})
	for _, req := range requests {
		cw.Write([]string{
			fmt.Sprintf("%d", req.ID),
			req.OfficeName,
			req.MaterialName,
			fmt.Sprintf("%d", req.Quantity),
			req.OfficePercentage.String(),
			req.StateName,
			req.RequesterName,
			req.TotalValue.String(),
			req.OfficeValue.String(),
			req.MainOfficeValue.String(),
			req.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
}
