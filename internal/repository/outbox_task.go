package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

type EventType string

const (
	EventDonationRecorded EventType = "donation.recorded"
	EventRequestSubmitted EventType = "request.submitted"
	EventRequestConcluded EventType = "request.concluded"
	EventRequestCancelled EventType = "request.cancelled"
	EventRequestRejected  EventType = "request.rejected"
)

// InventoryEvent is the JSON payload stored in outbox tasks.
type InventoryEvent struct {
	Type       EventType       `json:"type"`
	BankID     int64           `json:"bank_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	OrderID    int64           `json:"order_id,omitempty"`
	HospitalID int64           `json:"hospital_id,omitempty"`
	DonorID    int64           `json:"donor_id,omitempty"`
	UnitID     int64           `json:"unit_id,omitempty"`
	Component  string          `json:"component,omitempty"`
	BloodType  string          `json:"blood_type,omitempty"`
	Lines      []EventLineUnit `json:"lines,omitempty"`
}

type EventLineUnit struct {
	LineID    int64   `json:"line_id"`
	BloodType string  `json:"blood_type"`
	Component string  `json:"component"`
	Quantity  int     `json:"quantity"`
	UnitIDs   []int64 `json:"unit_ids,omitempty"`
}

func NewOutboxTask(topic string, event InventoryEvent) (*OutboxTask, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &OutboxTask{
		ID:      uuid.New(),
		Status:  TaskStatusCreated,
		Payload: payload,
		Topic:   topic,
	}, nil
}
