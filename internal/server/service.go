//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_server
package server

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
)

// Service is the part of *storage.Storage the HTTP layer calls.
type Service interface {
	RegisterDonor(ctx context.Context, reg domain.DonorRegistration) (domain.Donor, error)
	UpdateDonor(ctx context.Context, donorID int64, upd domain.DonorUpdate) (domain.Donor, error)
	SetDonorManualEnable(ctx context.Context, donorID int64, enabled bool) (domain.Donor, error)
	GetDonor(ctx context.Context, donorID int64) (domain.Donor, error)
	FindDonorByNationalID(ctx context.Context, nationalID string) (domain.Donor, error)
	ListDonors(ctx context.Context, filter domain.DonorFilter) ([]domain.Donor, error)
	DonorHistory(ctx context.Context, donorID int64) (domain.DonorHistory, error)
	RecordDonation(ctx context.Context, donorID int64, component domain.Component, siteID *int64) (domain.DonationUnit, error)
	SubmitRequest(ctx context.Context, hospitalID int64, lines []domain.LineRequest) (domain.RequestOrder, error)
	GetRequest(ctx context.Context, orderID int64) (domain.RequestOrder, error)
	GetRequestHistory(ctx context.Context, orderID int64) ([]domain.OrderHistoryEntry, error)
	CancelRequest(ctx context.Context, orderID, hospitalID int64) error
	RejectRequest(ctx context.Context, orderID int64) error
	ListHospitalRequests(ctx context.Context, hospitalID int64) ([]domain.RequestOrder, error)
	ListBankRequests(ctx context.Context, bankID int64, state *domain.OrderState) ([]domain.RequestOrder, error)
	QueryStock(ctx context.Context, bankID int64, filter domain.StockFilter) (domain.StockReport, error)
}
