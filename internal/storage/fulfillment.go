package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

// bucketDemand collects the lines drawing from one bucket, in line order.
type bucketDemand struct {
	bloodType string
	component string
	lines     []*repository.RequestLine
	total     int
}

// AttemptFulfill concludes the order if every line can be covered from the
// oldest available units of its bucket, and otherwise changes nothing.
//
// Lines that share a bucket are checked against their summed quantity and get
// consecutive, disjoint slices of the FIFO sequence.
func (s *Storage) AttemptFulfill(ctx context.Context, orderID int64) (domain.FulfillmentOutcome, error) {
	snapshot, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", s.fail("attempt_fulfill", notFound(err, "request", orderID))
	}
	if domain.OrderState(snapshot.State).Terminal() {
		metrics.FulfillmentAttemptsTotal.WithLabelValues(string(domain.NotActive)).Inc()
		return domain.NotActive, nil
	}

	var (
		outcome  domain.FulfillmentOutcome
		consumed int
	)
	err = s.runner.RunInTx(ctx, func(tx db.Tx) error {
		consumed = 0
		if err := s.donations.LockBankTx(ctx, tx, snapshot.BankID); err != nil {
			return err
		}

		order, err := s.orders.GetByIDTx(ctx, tx, orderID)
		if err != nil {
			return notFound(err, "request", orderID)
		}
		if domain.OrderState(order.State).Terminal() {
			outcome = domain.NotActive
			return nil
		}

		lines, err := s.orders.GetLinesTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("failed to load request lines: %w", err)
		}

		allocation, ok, err := s.allocate(ctx, tx, order.BankID, lines)
		if err != nil {
			return err
		}
		if !ok {
			outcome = domain.Pending
			return nil
		}

		now := s.now()
		var unitIDs []int64
		eventLines := make([]repository.EventLineUnit, 0, len(lines))
		for _, line := range lines {
			ids := allocation[line.ID]
			unitIDs = append(unitIDs, ids...)
			eventLines = append(eventLines, repository.EventLineUnit{
				LineID:    line.ID,
				BloodType: line.BloodType,
				Component: line.Component,
				Quantity:  line.Quantity,
				UnitIDs:   ids,
			})
		}

		if err := s.donations.ConsumeTx(ctx, tx, unitIDs, orderID, now); err != nil {
			if errors.Is(err, repository.ErrAlreadyConsumed) {
				metrics.ConcurrencyDefectsTotal.Inc()
				s.logger.Error("consumed unit selected for fulfillment",
					zap.Int64("order_id", orderID),
					zap.Int64s("unit_ids", unitIDs),
					zap.Error(err))
				return fmt.Errorf("request %d: %w", orderID, domain.ErrAlreadyConsumed)
			}
			return err
		}

		if err := s.transitionTx(ctx, tx, order, domain.OrderConcluded, now); err != nil {
			return err
		}
		consumed = len(unitIDs)
		outcome = domain.Fulfilled

		return s.enqueue(ctx, tx, repository.InventoryEvent{
			Type:       repository.EventRequestConcluded,
			BankID:     order.BankID,
			OccurredAt: now,
			OrderID:    order.ID,
			HospitalID: order.HospitalID,
			Lines:      eventLines,
		})
	})
	if err != nil {
		return "", s.fail("attempt_fulfill", err)
	}

	metrics.FulfillmentAttemptsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == domain.Fulfilled {
		metrics.UnitsConsumedTotal.Add(float64(consumed))
		s.stock.Invalidate(snapshot.BankID)
		s.logger.Info("request fulfilled",
			zap.Int64("order_id", orderID),
			zap.Int64("bank_id", snapshot.BankID),
			zap.Int("units", consumed))
	}
	return outcome, nil
}

// allocate maps every line id to the unit ids it takes. ok is false when some
// bucket cannot cover its summed demand; nothing is consumed in that case.
func (s *Storage) allocate(ctx context.Context, tx db.Tx, bankID int64, lines []*repository.RequestLine) (map[int64][]int64, bool, error) {
	var demands []*bucketDemand
	byBucket := make(map[[2]string]*bucketDemand)
	for _, line := range lines {
		key := [2]string{line.BloodType, line.Component}
		d, ok := byBucket[key]
		if !ok {
			d = &bucketDemand{bloodType: line.BloodType, component: line.Component}
			byBucket[key] = d
			demands = append(demands, d)
		}
		d.lines = append(d.lines, line)
		d.total += line.Quantity
	}

	allocation := make(map[int64][]int64, len(lines))
	for _, d := range demands {
		available, err := s.donations.ListAvailableTx(ctx, tx, bankID, d.bloodType, d.component)
		if err != nil {
			return nil, false, err
		}
		if len(available) < d.total {
			return nil, false, nil
		}

		next := 0
		for _, line := range d.lines {
			ids := make([]int64, 0, line.Quantity)
			for _, u := range available[next : next+line.Quantity] {
				ids = append(ids, u.ID)
			}
			allocation[line.ID] = ids
			next += line.Quantity
		}
	}
	return allocation, true, nil
}
