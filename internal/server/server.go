package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
)

// HospitalHeader carries the caller hospital as set by the fronting
// presentation layer.
const HospitalHeader = "X-Hospital-ID"

const metricsRoute = "metrics"

type Server struct {
	service      Service
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(service Service, audit config.Audit, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")
	return &Server{
		service:      service,
		logger:       logger,
		AuditManager: NewAuditManager(audit.Workers, audit.BatchSize, audit.Timeout, logger),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests and the
// audit log.
func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("port", port))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.AuditManager.Shutdown(ctx)
	s.logger.Info("server shutdown completed")
	return nil
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.auditLogMiddleware)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name(metricsRoute)

	router.HandleFunc("/donors", s.handleRegisterDonor).Methods(http.MethodPost).Name("register_donor")
	router.HandleFunc("/donors", s.handleListDonors).Methods(http.MethodGet).Name("list_donors")
	router.HandleFunc("/donors/{id:[0-9]+}", s.handleGetDonor).Methods(http.MethodGet).Name("get_donor")
	router.HandleFunc("/donors/{id:[0-9]+}", s.handleUpdateDonor).Methods(http.MethodPut).Name("update_donor")
	router.HandleFunc("/donors/{id:[0-9]+}/enabled", s.handleSetDonorEnabled).Methods(http.MethodPut).Name("set_donor_enabled")
	router.HandleFunc("/donors/{id:[0-9]+}/history", s.handleDonorHistory).Methods(http.MethodGet).Name("donor_history")

	router.HandleFunc("/donations", s.handleRecordDonation).Methods(http.MethodPost).Name("record_donation")

	router.HandleFunc("/requests", s.handleSubmitRequest).Methods(http.MethodPost).Name("submit_request")
	router.HandleFunc("/requests/{id:[0-9]+}", s.handleGetRequest).Methods(http.MethodGet).Name("get_request")
	router.HandleFunc("/requests/{id:[0-9]+}/history", s.handleRequestHistory).Methods(http.MethodGet).Name("request_history")
	router.HandleFunc("/requests/{id:[0-9]+}/cancel", s.handleCancelRequest).Methods(http.MethodPost).Name("cancel_request")
	router.HandleFunc("/admin/requests/{id:[0-9]+}/reject", s.handleRejectRequest).Methods(http.MethodPost).Name("reject_request")

	router.HandleFunc("/hospitals/{id:[0-9]+}/requests", s.handleHospitalRequests).Methods(http.MethodGet).Name("hospital_requests")
	router.HandleFunc("/banks/{id:[0-9]+}/requests", s.handleBankRequests).Methods(http.MethodGet).Name("bank_requests")
	router.HandleFunc("/banks/{id:[0-9]+}/stock", s.handleQueryStock).Methods(http.MethodGet).Name("query_stock")

	return router
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type errorBody struct {
	Error         string   `json:"error"`
	Field         string   `json:"field,omitempty"`
	DaysRemaining int      `json:"days_remaining,omitempty"`
	Reasons       []string `json:"reasons,omitempty"`
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognised is logged and reported without details.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		ineligible *domain.IneligibleDonorError
	)
	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &ineligible):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:         ineligible.Error(),
			DaysRemaining: ineligible.DaysRemaining,
			Reasons:       ineligible.Reasons,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func hospitalFromHeader(r *http.Request) (int64, bool) {
	v := r.Header.Get(HospitalHeader)
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
