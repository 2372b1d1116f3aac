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

type requestResponse struct {
	ID               int64           `json:"id"`
	OfficeID         int64           `json:"office_id"`
	OfficeName       string          `json:"office_name"`
	MaterialID       int64           `json:"material_id"`
	MaterialName     string          `json:"material_name"`
	Quantity         int32           `json:"quantity"`
	OfficePercentage decimal.Decimal `json:"office_percentage"`
	StateID          int16           `json:"state_id"`
	StateName        string          `json:"state_name"`
	RequesterName    string          `json:"requester_name"`
	Observation      string          `json:"observation"`
	TotalValue       decimal.Decimal `json:"total_value"`
	OfficeValue      decimal.Decimal `json:"office_value"`
	MainOfficeValue  decimal.Decimal `json:"main_office_value"`
	ResolvedBy       *int64          `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toRequestResponse(r db.Request) requestResponse {
	return requestResponse{
		ID:               r.ID,
		OfficeID:         r.OfficeID,
		OfficeName:       r.OfficeName,
		MaterialID:       r.MaterialID,
		MaterialName:     r.MaterialName,
		Quantity:         r.Quantity,
		OfficePercentage: r.OfficePercentage,
		StateID:          r.StateID,
		StateName:        r.StateName,
		RequesterName:    r.RequesterName,
		Observation:      r.Observation,
		TotalValue:       r.TotalValue,
		OfficeValue:      r.OfficeValue,
		MainOfficeValue:  r.MainOfficeValue,
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
		CreatedAt:        r.CreatedAt,
	}
}

func (s *Server) ListRequests(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	requests, err := s.requests.ListForSession(r.Context(), sess)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	limit, offset := parsePagination(r)
	page := paginate(requests, limit, offset)
	out := make([]requestResponse, 0, len(page))
	for _, req := range page {
		out = append(out, toRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(requests),
	})
}

func (s *Server) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request id", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	req, err := s.requests.Get(r.Context(), sess, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

type createRequestInput struct {
	OfficeID         int64           `json:"office_id"`
	MaterialID       int64           `json:"material_id"`
	Quantity         int32           `json:"quantity"`
	OfficePercentage decimal.Decimal `json:"office_percentage"`
	Observation      string          `json:"observation"`
}

func (s *Server) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in createRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	if in.OfficeID == 0 {
		in.OfficeID = sess.OfficeID
	}
	req, err := s.requests.Create(r.Context(), sess, workflow.CreateRequestInput{
		OfficeID:         in.OfficeID,
		MaterialID:       in.MaterialID,
		Quantity:         in.Quantity,
		OfficePercentage: in.OfficePercentage,
		Observation:      in.Observation,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(req))
}

func (s *Server) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request id", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	req, err := s.requests.Approve(r.Context(), sess, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

type partialApproveInput struct {
	Quantity int32 `json:"quantity"`
}

func (s *Server) ApproveRequestPartial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request id", nil))
		return
	}
	var in partialApproveInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	req, err := s.requests.ApprovePartial(r.Context(), sess, id, in.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

type rejectInput struct {
	Reason string `json:"reason"`
}

func (s *Server) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request id", nil))
		return
	}
	var in rejectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ValidationErr("invalid request body", nil))
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())
	req, err := s.requests.Reject(r.Context(), sess, id, in.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}
