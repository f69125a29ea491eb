package storage

import (
	"context"
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

// QueryStock reports available units per bucket over the whole blood type by
// component grid, narrowed by the filter. Buckets with no stock are listed
// as critical.
func (s *Storage) QueryStock(ctx context.Context, bankID int64, filter domain.StockFilter) (domain.StockReport, error) {
	if filter.BloodType != nil && !filter.BloodType.Valid() {
		return domain.StockReport{}, domain.NewValidationError("blood_type", fmt.Sprintf("unknown blood type %q", *filter.BloodType))
	}
	if filter.Component != nil && !filter.Component.Valid() {
		return domain.StockReport{}, domain.NewValidationError("component", fmt.Sprintf("unknown component %q", *filter.Component))
	}
	if _, err := s.directory.GetBank(ctx, bankID); err != nil {
		return domain.StockReport{}, s.fail("query_stock", notFound(err, "bank", bankID))
	}

	counts, err := s.stock.Counts(ctx, bankID)
	if err != nil {
		return domain.StockReport{}, s.fail("query_stock", fmt.Errorf("failed to count stock: %w", err))
	}
	available := make(map[domain.Bucket]int, len(counts))
	for _, c := range counts {
		available[domain.Bucket{BankID: bankID, BloodType: domain.BloodType(c.BloodType), Component: domain.Component(c.Component)}] = c.Available
	}

	report := domain.StockReport{BankID: bankID, Buckets: []domain.StockBucket{}}
	for _, bt := range domain.BloodTypes {
		if filter.BloodType != nil && *filter.BloodType != bt {
			continue
		}
		for _, c := range domain.Components {
			if filter.Component != nil && *filter.Component != c {
				continue
			}
			n := available[domain.Bucket{BankID: bankID, BloodType: bt, Component: c}]
			report.Buckets = append(report.Buckets, domain.StockBucket{
				BloodType: bt,
				Component: c,
				Available: n,
				Level:     s.level(n),
			})
			report.Total += n
		}
	}

	if filter.IncludeUnits {
		repoFilter := repository.StockFilter{}
		if filter.BloodType != nil {
			repoFilter.BloodType = string(*filter.BloodType)
		}
		if filter.Component != nil {
			repoFilter.Component = string(*filter.Component)
		}
		units, err := s.donations.ListAvailable(ctx, bankID, repoFilter)
		if err != nil {
			return domain.StockReport{}, s.fail("query_stock", fmt.Errorf("failed to list stock units: %w", err))
		}
		report.Units = unitsFromRepo(units)
	}
	return report, nil
}

func (s *Storage) level(available int) domain.StockLevel {
	switch {
	case available == 0:
		return domain.StockCritical
	case available < s.alertThreshold:
		return domain.StockLow
	}
	return domain.StockOK
}
