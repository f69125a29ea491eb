package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonorsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodbank_donors_registered_total",
		Help: "Total number of donors successfully registered.",
	})

	DonationsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodbank_donations_recorded_total",
		Help: "Total number of donation units recorded, by component.",
	},
		[]string{"component"},
	)

	IneligibleDonationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodbank_ineligible_donations_total",
		Help: "Total number of donation attempts refused because the donor was not eligible.",
	})

	RequestsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodbank_requests_submitted_total",
		Help: "Total number of hospital requests submitted.",
	})

	RequestTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodbank_request_transitions_total",
		Help: "Total number of request state transitions, by target state.",
	},
		[]string{"state"},
	)

	FulfillmentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodbank_fulfillment_attempts_total",
		Help: "Total number of fulfillment attempts, by outcome.",
	},
		[]string{"outcome"},
	)

	UnitsConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodbank_units_consumed_total",
		Help: "Total number of donation units consumed by fulfilled requests.",
	})

	ConcurrencyDefectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodbank_concurrency_defects_total",
		Help: "Attempts to consume an already consumed unit. Any non-zero value is a locking bug.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodbank_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	StockCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bloodbank_stock_cache_items",
		Help: "Current number of banks with a cached stock summary.",
	})

	OutboxTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodbank_outbox_tasks_total",
		Help: "Outbox tasks processed by the publisher, by result.",
	},
		[]string{"result"},
	)
)
