// Package metrics defines the custom Prometheus metrics of the booking
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via
// promauto at package init; the HTTP layer exposes them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// RegistrationsTotal counts successful user registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successfully registered users.",
	},
)

// ReservationsCreatedTotal counts newly created reservations.
var ReservationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created.",
	},
)

// ReservationStatusTotal counts admin status transitions.
// Label:
//   - status: the status applied (e.g. "CONFIRMED", "CANCELLED")
var ReservationStatusTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_status_total",
		Help:      "Total number of reservation status updates, by new status.",
	},
	[]string{"status"},
)

// CacheInvalidationsTotal counts view-cache invalidations.
// Label:
//   - view: the invalidated view group ("products", "admin")
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cached-view invalidations, by view group.",
	},
	[]string{"view"},
)

// UploadsTotal counts stored upload files.
// Label:
//   - purpose: upload subdirectory ("avatars", "uploads", "documents")
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of files written by the upload handler, by purpose.",
	},
	[]string{"purpose"},
)
