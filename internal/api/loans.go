package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/workflow"
)

type loanResponse struct {
	ID                 int64      `json:"id"`
	ElementID          int64      `json:"element_id"`
	ElementName        string     `json:"element_name"`
	RequesterName      string     `json:"requester_name"`
	OfficeID           int64      `json:"office_id"`
	OfficeName         string     `json:"office_name"`
	Quantity           int32      `json:"quantity"`
	LoanedAt           time.Time  `json:"loaned_at"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	State              string     `json:"state"`
	Event              string     `json:"event"`
	Observations       string     `json:"observations"`
	LenderName         string     `json:"lender_name"`
	ReturnedBy         *string    `json:"returned_by,omitempty"`
	Overdue            bool       `json:"overdue"`
}

func toLoanResponse(l db.Loan) loanResponse {
	overdue := (l.State == db.LoanStateApproved || l.State == db.LoanStatePartialApproved) &&
		workflow.DateOnly(l.ExpectedReturnDate).Before(workflow.DateOnly(time.Now()))
	return loanResponse{
		ID:                 l.ID,
		ElementID:          l.ElementID,
		ElementName:        l.ElementName,
		RequesterName:      l.RequesterName,
		OfficeID:           l.OfficeID,
		OfficeName:         l.OfficeName,
		Quantity:           l.Quantity,
		LoanedAt:           l.LoanedAt,
		ExpectedReturnDate: l.ExpectedReturnDate,
		ActualReturnDate:   l.ActualReturnDate,
		State:              l.State,
		Event:              l.Event,
		Observations:       l.Observations,
		LenderName:         l.LenderName,
		ReturnedBy:         l.ReturnedBy,
		Overdue:            overdue,
	}
}

func (s *Server) ListLoans(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	loans, err := s.loans.ListForSession(r.Context(), sess)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	limit, offset := parsePagination(r)
	page := paginate(loans, limit, offset)
	out := make([]loanResponse, 0, len(page))
	for _, l := range page {
		out = append(out, toLoanResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(loans),
	})
}

type createLoanInput struct {
	ElementID          int64  `json:"element_id"`
	Quantity           int32  `json:"quantity"`
	ExpectedReturnDate string `json:"expected_return_date"`
	Event              string `json:"event"`
	Observations       string `json:"observations"`
}

func (s *Server) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var in createLoanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	returnDate, err := time.Parse("2006-01-02", in.ExpectedReturnDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid return date", []ErrorDetail{
			{Field: "expected_return_date", Message: "must be YYYY-MM-DD"},
		}))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	loan, err := s.loans.Create(r.Context(), sess, workflow.CreateLoanInput{
		ElementID:          in.ElementID,
		Quantity:           in.Quantity,
		ExpectedReturnDate: returnDate,
		Event:              in.Event,
		Observations:       in.Observations,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanResponse(loan))
}

func (s *Server) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid loan id", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	loan, err := s.loans.Approve(r.Context(), sess, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) ApproveLoanPartial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid loan id", nil))
		return
	}
	var in partialApproveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	loan, err := s.loans.ApprovePartial(r.Context(), sess, id, in.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) RejectLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid loan id", nil))
		return
	}
	var in rejectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	loan, err := s.loans.Reject(r.Context(), sess, id, in.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

type returnInput struct {
	Note string `json:"note"`
}

func (s *Server) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid loan id", nil))
		return
	}
	var in returnInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	loan, err := s.loans.RegisterReturn(r.Context(), sess, id, in.Note)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

type elementResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	AvailableQuantity int32           `json:"available_quantity"`
	ImagePath         *string         `json:"image_path,omitempty"`
}

func (s *Server) ListElements(w http.ResponseWriter, r *http.Request) {
	elements, err := s.database.Queries().ListElements(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]elementResponse, 0, len(elements))
	for _, e := range elements {
		out = append(out, elementResponse{
			ID:                e.ID,
			Name:              e.Name,
			UnitValue:         e.UnitValue,
			AvailableQuantity: e.AvailableQuantity,
			ImagePath:         e.ImagePath,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type elementInput struct {
	Name              string          `json:"name"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	AvailableQuantity int32           `json:"available_quantity"`
}

func (s *Server) CreateElement(w http.ResponseWriter, r *http.Request) {
	var in elementInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid element", []ErrorDetail{
			{Field: "name", Message: "is required"},
		}))
		return
	}
	if in.AvailableQuantity < 0 {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid element", []ErrorDetail{
			{Field: "available_quantity", Message: "must not be negative"},
		}))
		return
	}
	id, err := s.database.Queries().CreateElement(r.Context(), db.CreateElementParams{
		Name:              in.Name,
		UnitValue:         in.UnitValue,
		AvailableQuantity: in.AvailableQuantity,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}
