package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/rbac"
)

type dashboardResponse struct {
	OfficeName       string          `json:"office_name"`
	MaterialCount    int             `json:"material_count"`
	InventoryValue   decimal.Decimal `json:"inventory_value"`
	LowStockCount    int             `json:"low_stock_count"`
	PendingRequests  int64           `json:"pending_requests"`
	ApprovedRequests int64           `json:"approved_requests"`
	RejectedRequests int64           `json:"rejected_requests"`
	PartialRequests  int64           `json:"partial_requests"`
	ActiveLoans      int             `json:"active_loans"`
	OverdueLoans     int             `json:"overdue_loans"`
}

// Dashboard aggregates the session's visible inventory and request figures.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	queries := s.database.Queries()

	var (
		materials []db.Material
		loans     []db.Loan
		err       error
	)
	countOffice := sess.OfficeID
	if rbac.CanViewAll(sess.Role) {
		countOffice = 0
		materials, err = queries.ListMaterials(r.Context())
	} else {
		materials, err = queries.ListMaterialsByOffice(r.Context(), sess.OfficeID)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if rbac.CanViewAll(sess.Role) {
		loans, err = queries.ListLoans(r.Context())
	} else {
		loans, err = queries.ListLoansByOffice(r.Context(), sess.OfficeID)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	counts, err := queries.CountRequestsByState(r.Context(), countOffice)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := dashboardResponse{
		OfficeName:     sess.OfficeName,
		MaterialCount:  len(materials),
		InventoryValue: decimal.Zero,
	}
	for _, m := range materials {
		resp.InventoryValue = resp.InventoryValue.Add(m.TotalValue())
		if m.AvailableQuantity <= m.MinimumQuantity {
			resp.LowStockCount++
		}
	}
	for _, c := range counts {
		switch c.StateID {
		case db.RequestStatePending:
			resp.PendingRequests = c.Count
		case db.RequestStateApproved:
			resp.ApprovedRequests = c.Count
		case db.RequestStateRejected:
			resp.RejectedRequests = c.Count
		case db.RequestStatePartialApproved:
			resp.PartialRequests = c.Count
		}
	}
	for _, l := range loans {
		if l.State == db.LoanStateApproved || l.State == db.LoanStatePartialApproved {
			resp.ActiveLoans++
			if toLoanResponse(l).Overdue {
				resp.OverdueLoans++
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
