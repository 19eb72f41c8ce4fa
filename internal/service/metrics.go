package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName scopes the counters recorded by the services.
const MeterName = "github.com/metinatakli/ticket-booking-engine/internal/service"

type metrics struct {
	bookingsCreated  metric.Int64Counter
	bookingConflicts metric.Int64Counter
	webhookEvents    metric.Int64Counter
	reaperExpired    metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(MeterName)

	return &metrics{
		bookingsCreated:  counter(meter, "bookings.created", "Tickets written by the reserve and confirm paths"),
		bookingConflicts: counter(meter, "bookings.conflicts", "Booking attempts rejected with a conflict"),
		webhookEvents:    counter(meter, "webhook.events", "Payment webhook events by type and outcome"),
		reaperExpired:    counter(meter, "reaper.expired", "Pending tickets expired by the reaper"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}

	return c
}
