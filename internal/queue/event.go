// Package queue defines the reservation events exchanged over the message
// broker and the background consumer that turns them into an audit log.
package queue

// Queue names. Durable queues, declared idempotently by both ends.
const (
	ReservationCreatedQueue = "reservation.created"
	ReservationStatusQueue  = "reservation.status"
)

// ReservationCreatedEvent is published after a reservation is persisted.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	ProductID     uint64  `json:"product_id"`
	ProductTitle  string  `json:"product_title,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalPrice    float64 `json:"total_price"`
	TotalPersons  int     `json:"total_persons"`
	CreatedAt     string  `json:"created_at"`
}

// ReservationStatusEvent is published when an admin changes a reservation's
// status.
type ReservationStatusEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	ChangedBy     uint64 `json:"changed_by"`
	ChangedAt     string `json:"changed_at"`
}
