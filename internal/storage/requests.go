package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

var stateEvents = map[domain.OrderState]repository.EventType{
	domain.OrderConcluded: repository.EventRequestConcluded,
	domain.OrderCancelled: repository.EventRequestCancelled,
	domain.OrderRejected:  repository.EventRequestRejected,
}

// SubmitRequest stores an active order for the hospital's bank and makes one
// fulfillment attempt. The returned order reflects that attempt.
func (s *Storage) SubmitRequest(ctx context.Context, hospitalID int64, lines []domain.LineRequest) (domain.RequestOrder, error) {
	if err := validateLines(lines); err != nil {
		return domain.RequestOrder{}, err
	}

	hospital, err := s.directory.GetHospital(ctx, hospitalID)
	if err != nil {
		return domain.RequestOrder{}, s.fail("submit_request", notFound(err, "hospital", hospitalID))
	}

	now := s.now()
	order := &repository.RequestOrder{
		HospitalID: hospital.ID,
		BankID:     hospital.BankID,
		State:      string(domain.OrderActive),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.runner.RunInTx(ctx, func(tx db.Tx) error {
		rows := make([]*repository.RequestLine, len(lines))
		for i, l := range lines {
			rows[i] = &repository.RequestLine{
				BankID:    hospital.BankID,
				BloodType: string(l.BloodType),
				Component: string(l.Component),
				Quantity:  l.Quantity,
			}
		}
		if err := s.orders.CreateTx(ctx, tx, order, rows); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if err := s.history.CreateTx(ctx, tx, &repository.HistoryEntry{
			OrderID:   order.ID,
			State:     order.State,
			ChangedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to add request history entry: %w", err)
		}

		eventLines := make([]repository.EventLineUnit, len(rows))
		for i, r := range rows {
			eventLines[i] = repository.EventLineUnit{LineID: r.ID, BloodType: r.BloodType, Component: r.Component, Quantity: r.Quantity}
		}
		return s.enqueue(ctx, tx, repository.InventoryEvent{
			Type:       repository.EventRequestSubmitted,
			BankID:     order.BankID,
			OccurredAt: now,
			OrderID:    order.ID,
			HospitalID: order.HospitalID,
			Lines:      eventLines,
		})
	})
	if err != nil {
		return domain.RequestOrder{}, s.fail("submit_request", err)
	}

	metrics.RequestsSubmittedTotal.Inc()
	s.logger.Info("request submitted",
		zap.Int64("order_id", order.ID),
		zap.Int64("hospital_id", hospitalID),
		zap.Int64("bank_id", order.BankID),
		zap.Int("lines", len(lines)))

	// The order is stored either way; a failed attempt leaves it active for
	// the next donation to pick up.
	if _, err := s.AttemptFulfill(context.WithoutCancel(ctx), order.ID); err != nil {
		s.logger.Error("initial fulfillment attempt failed", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	return s.GetRequest(ctx, order.ID)
}

func validateLines(lines []domain.LineRequest) error {
	if len(lines) == 0 {
		return domain.NewValidationError("lines", "at least one line is required")
	}
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		if !l.BloodType.Valid() {
			return domain.NewValidationError(field+".blood_type", fmt.Sprintf("unknown blood type %q", l.BloodType))
		}
		if !l.Component.Valid() {
			return domain.NewValidationError(field+".component", fmt.Sprintf("unknown component %q", l.Component))
		}
		if l.Quantity <= 0 {
			return domain.NewValidationError(field+".quantity", "must be positive")
		}
	}
	return nil
}

// CancelRequest is only allowed to the hospital that owns the order and only
// while the order is active.
func (s *Storage) CancelRequest(ctx context.Context, orderID, hospitalID int64) error {
	err := s.runner.RunInTx(ctx, func(tx db.Tx) error {
		order, err := s.orders.GetByIDTx(ctx, tx, orderID)
		if err != nil {
			return notFound(err, "request", orderID)
		}
		if order.HospitalID != hospitalID {
			return fmt.Errorf("request %d belongs to another hospital: %w", orderID, domain.ErrUnauthorized)
		}
		return s.closeTx(ctx, tx, order, domain.OrderCancelled)
	})
	if err != nil {
		return s.fail("cancel_request", err)
	}
	s.logger.Info("request cancelled", zap.Int64("order_id", orderID), zap.Int64("hospital_id", hospitalID))
	return nil
}

// RejectRequest is the privileged counterpart of CancelRequest; the caller
// is expected to be authorized already.
func (s *Storage) RejectRequest(ctx context.Context, orderID int64) error {
	err := s.runner.RunInTx(ctx, func(tx db.Tx) error {
		order, err := s.orders.GetByIDTx(ctx, tx, orderID)
		if err != nil {
			return notFound(err, "request", orderID)
		}
		return s.closeTx(ctx, tx, order, domain.OrderRejected)
	})
	if err != nil {
		return s.fail("reject_request", err)
	}
	s.logger.Info("request rejected", zap.Int64("order_id", orderID))
	return nil
}

func (s *Storage) closeTx(ctx context.Context, tx db.Tx, order *repository.RequestOrder, state domain.OrderState) error {
	if domain.OrderState(order.State).Terminal() {
		return fmt.Errorf("request %d is %s: %w", order.ID, order.State, domain.ErrInvalidState)
	}
	now := s.now()
	if err := s.transitionTx(ctx, tx, order, state, now); err != nil {
		return err
	}
	return s.enqueue(ctx, tx, repository.InventoryEvent{
		Type:       stateEvents[state],
		BankID:     order.BankID,
		OccurredAt: now,
		OrderID:    order.ID,
		HospitalID: order.HospitalID,
	})
}

// transitionTx moves an active order to a terminal state and records it in
// the order history.
func (s *Storage) transitionTx(ctx context.Context, tx db.Tx, order *repository.RequestOrder, state domain.OrderState, at time.Time) error {
	if err := s.orders.UpdateStateTx(ctx, tx, order.ID, string(state), at); err != nil {
		return fmt.Errorf("failed to update request state: %w", err)
	}
	if err := s.history.CreateTx(ctx, tx, &repository.HistoryEntry{
		OrderID:   order.ID,
		State:     string(state),
		ChangedAt: at,
	}); err != nil {
		return fmt.Errorf("failed to add request history entry: %w", err)
	}
	order.State = string(state)
	order.UpdatedAt = at
	metrics.RequestTransitionsTotal.WithLabelValues(string(state)).Inc()
	return nil
}

func (s *Storage) GetRequest(ctx context.Context, orderID int64) (domain.RequestOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.RequestOrder{}, s.fail("get_request", notFound(err, "request", orderID))
	}
	lines, err := s.orders.GetLines(ctx, orderID)
	if err != nil {
		return domain.RequestOrder{}, s.fail("get_request", fmt.Errorf("failed to get request lines: %w", err))
	}
	return orderFromRepo(order, lines), nil
}

func (s *Storage) ListHospitalRequests(ctx context.Context, hospitalID int64) ([]domain.RequestOrder, error) {
	orders, err := s.orders.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, s.fail("list_requests", fmt.Errorf("failed to list hospital requests: %w", err))
	}
	return s.withLines(ctx, orders)
}

// ListBankRequests lists the bank's orders newest first, optionally only
// those in one state.
func (s *Storage) ListBankRequests(ctx context.Context, bankID int64, state *domain.OrderState) ([]domain.RequestOrder, error) {
	var filter string
	if state != nil {
		filter = string(*state)
	}
	orders, err := s.orders.ListByBank(ctx, bankID, filter)
	if err != nil {
		return nil, s.fail("list_requests", fmt.Errorf("failed to list bank requests: %w", err))
	}
	return s.withLines(ctx, orders)
}

func (s *Storage) GetRequestHistory(ctx context.Context, orderID int64) ([]domain.OrderHistoryEntry, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, s.fail("request_history", notFound(err, "request", orderID))
	}
	rows, err := s.history.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, s.fail("request_history", fmt.Errorf("failed to get request history: %w", err))
	}

	entries := make([]domain.OrderHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.OrderHistoryEntry{
			State:     domain.OrderState(row.State),
			ChangedAt: row.ChangedAt,
		}
	}
	return entries, nil
}

func (s *Storage) withLines(ctx context.Context, orders []*repository.RequestOrder) ([]domain.RequestOrder, error) {
	result := make([]domain.RequestOrder, len(orders))
	for i, o := range orders {
		lines, err := s.orders.GetLines(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get lines of request %d: %w", o.ID, err)
		}
		result[i] = orderFromRepo(o, lines)
	}
	return result, nil
}
