package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/eligibility"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

// RecordDonation appends a valid unit for an eligible donor and then runs a
// fulfillment pass over the bank's active requests. The donor row stays
// locked from the eligibility check to the insert.
func (s *Storage) RecordDonation(ctx context.Context, donorID int64, component domain.Component, siteID *int64) (domain.DonationUnit, error) {
	if !component.Valid() {
		return domain.DonationUnit{}, domain.NewValidationError("component", fmt.Sprintf("unknown component %q", component))
	}

	var unit *repository.DonationUnit
	err := s.runner.RunInTx(ctx, func(tx db.Tx) error {
		now := s.now()

		donorRow, err := s.donors.GetByIDTx(ctx, tx, donorID)
		if err != nil {
			return notFound(err, "donor", donorID)
		}

		if siteID != nil {
			site, err := s.directory.GetSite(ctx, *siteID)
			if err != nil {
				return notFound(err, "collection site", *siteID)
			}
			if site.BankID != donorRow.BankID {
				return domain.NewValidationError("site_id", "collection site belongs to another bank")
			}
		}

		units, err := s.donations.ListByDonorTx(ctx, tx, donorID)
		if err != nil {
			return fmt.Errorf("failed to load donation history: %w", err)
		}

		res := eligibility.Evaluate(donorFromRepo(donorRow), unitsFromRepo(units), now)
		if !res.Eligible {
			return &domain.IneligibleDonorError{
				DonorID:       donorID,
				DaysRemaining: res.DaysRemaining,
				Reasons:       res.Reasons,
			}
		}

		unit = &repository.DonationUnit{
			CollectionDate: now,
			Component:      string(component),
			BloodType:      donorRow.BloodType,
			Valid:          true,
			DonorID:        donorID,
			SiteID:         siteID,
			BankID:         donorRow.BankID,
		}
		if err := s.donations.CreateTx(ctx, tx, unit); err != nil {
			return fmt.Errorf("failed to insert donation unit: %w", err)
		}

		donorRow.LastDonationDate = &now
		donorRow.UpdatedAt = now
		if err := s.donors.UpdateTx(ctx, tx, donorRow); err != nil {
			return fmt.Errorf("failed to update last donation date: %w", err)
		}

		return s.enqueue(ctx, tx, repository.InventoryEvent{
			Type:       repository.EventDonationRecorded,
			BankID:     unit.BankID,
			OccurredAt: now,
			DonorID:    donorID,
			UnitID:     unit.ID,
			Component:  unit.Component,
			BloodType:  unit.BloodType,
		})
	})
	if domain.IsIneligible(err) {
		metrics.IneligibleDonationsTotal.Inc()
		return domain.DonationUnit{}, err
	}
	if err != nil {
		return domain.DonationUnit{}, s.fail("record_donation", err)
	}

	metrics.DonationsRecordedTotal.WithLabelValues(unit.Component).Inc()
	s.stock.Invalidate(unit.BankID)
	s.logger.Info("donation recorded",
		zap.Int64("unit_id", unit.ID),
		zap.Int64("donor_id", donorID),
		zap.Int64("bank_id", unit.BankID),
		zap.String("component", unit.Component))

	s.FulfillPending(context.WithoutCancel(ctx), unit.BankID)

	return unitFromRepo(unit), nil
}

// FulfillPending attempts every active request of the bank, oldest first.
// A failed attempt is logged and the pass moves on.
func (s *Storage) FulfillPending(ctx context.Context, bankID int64) {
	orders, err := s.orders.ListActiveByBank(ctx, bankID)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("fulfillment_pass").Inc()
		s.logger.Error("failed to list active requests", zap.Int64("bank_id", bankID), zap.Error(err))
		return
	}

	for _, order := range orders {
		if _, err := s.AttemptFulfill(ctx, order.ID); err != nil {
			s.logger.Error("fulfillment attempt failed",
				zap.Int64("order_id", order.ID),
				zap.Int64("bank_id", bankID),
				zap.Error(err))
		}
	}
}

// QueryAvailable lists the valid units of one bucket in FIFO order.
func (s *Storage) QueryAvailable(ctx context.Context, bankID int64, bloodType domain.BloodType, component domain.Component) ([]domain.DonationUnit, error) {
	if !bloodType.Valid() {
		return nil, domain.NewValidationError("blood_type", fmt.Sprintf("unknown blood type %q", bloodType))
	}
	if !component.Valid() {
		return nil, domain.NewValidationError("component", fmt.Sprintf("unknown component %q", component))
	}

	units, err := s.donations.ListAvailable(ctx, bankID, repository.StockFilter{
		BloodType: string(bloodType),
		Component: string(component),
	})
	if err != nil {
		return nil, s.fail("query_available", fmt.Errorf("failed to list available units: %w", err))
	}
	return unitsFromRepo(units), nil
}
