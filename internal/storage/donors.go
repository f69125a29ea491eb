package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/eligibility"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

// RegisterDonor validates the attributes and stores a new, manually enabled
// donor. A national id already on file is a validation error.
func (s *Storage) RegisterDonor(ctx context.Context, reg domain.DonorRegistration) (domain.Donor, error) {
	now := s.now()
	reg.NationalID = strings.TrimSpace(reg.NationalID)
	reg.Name = strings.TrimSpace(reg.Name)

	if err := validateRegistration(reg, now); err != nil {
		return domain.Donor{}, err
	}
	if _, err := s.directory.GetBank(ctx, reg.BankID); err != nil {
		return domain.Donor{}, s.fail("register_donor", notFound(err, "bank", reg.BankID))
	}

	_, err := s.donors.GetByNationalID(ctx, reg.NationalID)
	switch {
	case err == nil:
		return domain.Donor{}, domain.NewValidationError("national_id", "already registered")
	case !errors.Is(err, repository.ErrObjectNotFound):
		return domain.Donor{}, s.fail("register_donor", fmt.Errorf("failed to look up national id: %w", err))
	}

	row := &repository.Donor{
		NationalID:      reg.NationalID,
		Name:            reg.Name,
		Phone:           strings.TrimSpace(reg.Phone),
		BirthDate:       reg.BirthDate,
		Gender:          string(reg.Gender),
		Weight:          reg.Weight.Round(2),
		BloodType:       string(reg.BloodType),
		ManuallyEnabled: true,
		BankID:          reg.BankID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.runner.RunInTx(ctx, func(tx db.Tx) error {
		return s.donors.CreateTx(ctx, tx, row)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return domain.Donor{}, domain.NewValidationError("national_id", "already registered")
	}
	if err != nil {
		return domain.Donor{}, s.fail("register_donor", fmt.Errorf("failed to register donor: %w", err))
	}

	metrics.DonorsRegisteredTotal.Inc()
	s.logger.Info("donor registered",
		zap.Int64("donor_id", row.ID),
		zap.Int64("bank_id", row.BankID),
		zap.String("blood_type", row.BloodType))
	return donorFromRepo(row), nil
}

func validateRegistration(reg domain.DonorRegistration, now time.Time) error {
	if reg.NationalID == "" {
		return domain.NewValidationError("national_id", "required")
	}
	if reg.Name == "" {
		return domain.NewValidationError("name", "required")
	}
	if !reg.BloodType.Valid() {
		return domain.NewValidationError("blood_type", fmt.Sprintf("unknown blood type %q", reg.BloodType))
	}
	if _, err := domain.ParseGender(string(reg.Gender)); err != nil {
		return err
	}
	if reg.BirthDate.IsZero() || reg.BirthDate.After(now) {
		return domain.NewValidationError("birth_date", "must be a past date")
	}
	age := eligibility.Age(reg.BirthDate, now)
	if age < eligibility.MinAge {
		return domain.NewValidationError("birth_date", eligibility.ReasonUnderage)
	}
	if age > eligibility.MaxFirstRegistrationAge {
		return domain.NewValidationError("birth_date", "too old for a first registration")
	}
	if reg.Weight.LessThan(eligibility.MinWeight) {
		return domain.NewValidationError("weight", eligibility.ReasonUnderweight)
	}
	return nil
}

// SetDonorManualEnable flips only the staff flag; computed eligibility is
// left to the evaluator.
func (s *Storage) SetDonorManualEnable(ctx context.Context, donorID int64, enabled bool) (domain.Donor, error) {
	var donor domain.Donor
	err := s.runner.RunInTx(ctx, func(tx db.Tx) error {
		row, err := s.donors.GetByIDTx(ctx, tx, donorID)
		if err != nil {
			return notFound(err, "donor", donorID)
		}
		row.ManuallyEnabled = enabled
		row.UpdatedAt = s.now()
		if err := s.donors.UpdateTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update donor: %w", err)
		}
		donor = donorFromRepo(row)
		return nil
	})
	if err != nil {
		return domain.Donor{}, s.fail("set_donor_enabled", err)
	}

	s.logger.Info("donor manual flag changed", zap.Int64("donor_id", donorID), zap.Bool("enabled", enabled))
	return donor, nil
}

func (s *Storage) UpdateDonor(ctx context.Context, donorID int64, upd domain.DonorUpdate) (domain.Donor, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return domain.Donor{}, domain.NewValidationError("name", "required")
	}
	if upd.Weight != nil && upd.Weight.LessThan(eligibility.MinWeight) {
		return domain.Donor{}, domain.NewValidationError("weight", eligibility.ReasonUnderweight)
	}
	if upd.Gender != nil {
		if _, err := domain.ParseGender(string(*upd.Gender)); err != nil {
			return domain.Donor{}, err
		}
	}

	var donor domain.Donor
	err := s.runner.RunInTx(ctx, func(tx db.Tx) error {
		row, err := s.donors.GetByIDTx(ctx, tx, donorID)
		if err != nil {
			return notFound(err, "donor", donorID)
		}
		if upd.Name != nil {
			row.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Phone != nil {
			row.Phone = strings.TrimSpace(*upd.Phone)
		}
		if upd.Gender != nil {
			row.Gender = string(*upd.Gender)
		}
		if upd.Weight != nil {
			row.Weight = upd.Weight.Round(2)
		}
		row.UpdatedAt = s.now()
		if err := s.donors.UpdateTx(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to update donor: %w", err)
		}
		donor = donorFromRepo(row)
		return nil
	})
	if err != nil {
		return domain.Donor{}, s.fail("update_donor", err)
	}
	return donor, nil
}

func (s *Storage) GetDonor(ctx context.Context, donorID int64) (domain.Donor, error) {
	row, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return domain.Donor{}, s.fail("get_donor", notFound(err, "donor", donorID))
	}
	return donorFromRepo(row), nil
}

func (s *Storage) FindDonorByNationalID(ctx context.Context, nationalID string) (domain.Donor, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return domain.Donor{}, domain.NewValidationError("national_id", "required")
	}
	row, err := s.donors.GetByNationalID(ctx, nationalID)
	if err != nil {
		return domain.Donor{}, s.fail("find_donor", notFound(err, "donor with national id", nationalID))
	}
	return donorFromRepo(row), nil
}

func (s *Storage) ListDonors(ctx context.Context, filter domain.DonorFilter) ([]domain.Donor, error) {
	repoFilter := repository.DonorFilter{BankID: filter.BankID, EnabledOnly: filter.EnabledOnly}
	if filter.BloodType != nil {
		repoFilter.BloodType = string(*filter.BloodType)
	}

	rows, err := s.donors.List(ctx, repoFilter)
	if err != nil {
		return nil, s.fail("list_donors", fmt.Errorf("failed to list donors: %w", err))
	}

	donors := make([]domain.Donor, len(rows))
	for i, row := range rows {
		donors[i] = donorFromRepo(row)
	}
	return donors, nil
}

// DonorHistory returns the donor's units newest first together with the
// current eligibility verdict.
func (s *Storage) DonorHistory(ctx context.Context, donorID int64) (domain.DonorHistory, error) {
	row, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return domain.DonorHistory{}, s.fail("donor_history", notFound(err, "donor", donorID))
	}
	units, err := s.donations.ListByDonor(ctx, donorID)
	if err != nil {
		return domain.DonorHistory{}, s.fail("donor_history", fmt.Errorf("failed to list donations: %w", err))
	}

	donor := donorFromRepo(row)
	history := unitsFromRepo(units)
	res := eligibility.Evaluate(donor, history, s.now())

	return domain.DonorHistory{
		Donor:         donor,
		Donations:     history,
		Eligible:      res.Eligible,
		DaysRemaining: res.DaysRemaining,
		Reasons:       res.Reasons,
	}, nil
}
