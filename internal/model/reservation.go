package model

import "time"

// Reservation statuses. New reservations start PENDING; only admins move
// them onward.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a user's booking of a product over a date range,
// together with the occupant contact details and the uploaded identity and
// contract documents. Document fields stay nil when no file was supplied.
type Reservation struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"userId"`
	ProductID    uint64    `json:"productId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	TotalPrice   float64   `json:"totalPrice"`
	Status       string    `json:"status"`
	FullName     *string   `json:"fullName,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	TotalPersons int       `json:"totalPersons"`
	CinFile      *string   `json:"cinFile,omitempty"`
	PassportFile *string   `json:"passportFile,omitempty"`
	ContractFile *string   `json:"contractFile,omitempty"`
	Product      *Product  `json:"product,omitempty"` // populated on list views
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
