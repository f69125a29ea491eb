package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
)

const dateLayout = "2006-01-02"

type registerDonorRequest struct {
	NationalID string          `json:"national_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	BirthDate  string          `json:"birth_date"`
	Gender     string          `json:"gender"`
	Weight     decimal.Decimal `json:"weight"`
	BloodType  string          `json:"blood_type"`
	BankID     int64           `json:"bank_id"`
}

func (s *Server) handleRegisterDonor(w http.ResponseWriter, r *http.Request) {
	var req registerDonorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	birth, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid birth_date format. Use YYYY-MM-DD")
		return
	}
	bloodType, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	gender, err := domain.ParseGender(req.Gender)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	donor, err := s.service.RegisterDonor(r.Context(), domain.DonorRegistration{
		NationalID: req.NationalID,
		Name:       req.Name,
		Phone:      req.Phone,
		BirthDate:  birth,
		Gender:     gender,
		Weight:     req.Weight,
		BloodType:  bloodType,
		BankID:     req.BankID,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, donor)
}

// handleListDonors looks a single donor up by national_id, or lists a bank's
// donors when bank_id is given.
func (s *Server) handleListDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if nid := q.Get("national_id"); nid != "" {
		donor, err := s.service.FindDonorByNationalID(r.Context(), nid)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, []domain.Donor{donor})
		return
	}

	bankID, err := strconv.ParseInt(q.Get("bank_id"), 10, 64)
	if err != nil || bankID <= 0 {
		respondError(w, http.StatusBadRequest, "Missing or invalid 'bank_id' parameter")
		return
	}
	filter := domain.DonorFilter{BankID: bankID, EnabledOnly: q.Get("enabled_only") == "true"}
	if v := q.Get("blood_type"); v != "" {
		bt, err := domain.ParseBloodType(v)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		filter.BloodType = &bt
	}

	donors, err := s.service.ListDonors(r.Context(), filter)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, donors)
}

func (s *Server) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid donor ID")
		return
	}
	donor, err := s.service.GetDonor(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, donor)
}

func (s *Server) handleUpdateDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid donor ID")
		return
	}

	var req struct {
		Name   *string          `json:"name"`
		Phone  *string          `json:"phone"`
		Gender *string          `json:"gender"`
		Weight *decimal.Decimal `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := domain.DonorUpdate{Name: req.Name, Phone: req.Phone, Weight: req.Weight}
	if req.Gender != nil {
		g, err := domain.ParseGender(*req.Gender)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		upd.Gender = &g
	}

	donor, err := s.service.UpdateDonor(r.Context(), id, upd)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, donor)
}

func (s *Server) handleSetDonorEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid donor ID")
		return
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	donor, err := s.service.SetDonorManualEnable(r.Context(), id, *req.Enabled)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, donor)
}

func (s *Server) handleDonorHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid donor ID")
		return
	}
	history, err := s.service.DonorHistory(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleRecordDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DonorID   int64  `json:"donor_id"`
		Component string `json:"component"`
		SiteID    *int64 `json:"site_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	component, err := domain.ParseComponent(req.Component)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	unit, err := s.service.RecordDonation(r.Context(), req.DonorID, component, req.SiteID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, unit)
}

type lineRequest struct {
	BloodType string `json:"blood_type"`
	Component string `json:"component"`
	Quantity  int    `json:"quantity"`
}

// handleSubmitRequest takes the hospital from the header when present and
// from the body otherwise.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HospitalID int64         `json:"hospital_id"`
		Lines      []lineRequest `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	hospitalID := req.HospitalID
	if id, ok := hospitalFromHeader(r); ok {
		hospitalID = id
	}
	if hospitalID <= 0 {
		respondError(w, http.StatusBadRequest, "Missing hospital_id")
		return
	}

	lines := make([]domain.LineRequest, len(req.Lines))
	for i, l := range req.Lines {
		bt, err := domain.ParseBloodType(l.BloodType)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		c, err := domain.ParseComponent(l.Component)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		lines[i] = domain.LineRequest{BloodType: bt, Component: c, Quantity: l.Quantity}
	}

	order, err := s.service.SubmitRequest(r.Context(), hospitalID, lines)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	order, err := s.service.GetRequest(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleRequestHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	history, err := s.service.GetRequestHistory(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	hospitalID, ok := hospitalFromHeader(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing or invalid "+HospitalHeader+" header")
		return
	}

	if err := s.service.CancelRequest(r.Context(), id, hospitalID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Request cancelled"})
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}
	if err := s.service.RejectRequest(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Request rejected"})
}

func (s *Server) handleHospitalRequests(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid hospital ID")
		return
	}
	orders, err := s.service.ListHospitalRequests(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleBankRequests(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid bank ID")
		return
	}

	var state *domain.OrderState
	if v := r.URL.Query().Get("state"); v != "" {
		st, err := domain.ParseOrderState(v)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		state = &st
	}

	orders, err := s.service.ListBankRequests(r.Context(), id, state)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleQueryStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid bank ID")
		return
	}

	q := r.URL.Query()
	filter := domain.StockFilter{IncludeUnits: q.Get("units") == "true"}
	if v := q.Get("blood_type"); v != "" {
		bt, err := domain.ParseBloodType(v)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		filter.BloodType = &bt
	}
	if v := q.Get("component"); v != "" {
		c, err := domain.ParseComponent(v)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		filter.Component = &c
	}

	report, err := s.service.QueryStock(r.Context(), id, filter)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
