package entity

import (
	"time"
)

// Appointment status values
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

// Owner roles used when resolving appointments
const (
	RoleClient  = "client"
	RoleStylist = "stylist"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusScheduled:  1,
	StatusConfirmed:  2,
	StatusInProgress: 3,
	StatusCompleted:  4,
}

// IsTerminalStatus reports whether no further transition is allowed from s.
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition reports whether an appointment may move from one status to
// another. Forward moves along the pending/scheduled/confirmed/in_progress/
// completed chain are allowed, cancelled and no_show are reachable from any
// non-terminal state, and writing the same status again is a no-op.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if IsTerminalStatus(from) {
		return false
	}
	if to == StatusCancelled || to == StatusNoShow {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		// Unknown legacy status, treat as pending
		fromRank = 0
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ServiceStylistPair links one booked service to the stylist performing it.
type ServiceStylistPair struct {
	ServiceID    string  `bson:"serviceId" json:"serviceId"`
	ServiceName  string  `bson:"serviceName,omitempty" json:"serviceName,omitempty"`
	ServicePrice float64 `bson:"servicePrice,omitempty" json:"servicePrice,omitempty"`
	StylistID    string  `bson:"stylistId" json:"stylistId"`
	StylistName  string  `bson:"stylistName,omitempty" json:"stylistName,omitempty"`
}

// HistoryEntry is one row of the append-only appointment audit log.
type HistoryEntry struct {
	Action    string    `bson:"action" json:"action"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Actor     string    `bson:"actor,omitempty" json:"actor,omitempty"`
	OldStatus string    `bson:"oldStatus,omitempty" json:"oldStatus,omitempty"`
	NewStatus string    `bson:"newStatus,omitempty" json:"newStatus,omitempty"`
	OldDate   string    `bson:"oldDate,omitempty" json:"oldDate,omitempty"`
	OldTime   string    `bson:"oldTime,omitempty" json:"oldTime,omitempty"`
	NewDate   string    `bson:"newDate,omitempty" json:"newDate,omitempty"`
	NewTime   string    `bson:"newTime,omitempty" json:"newTime,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Appointment is the canonical view model produced by the mapper, independent
// of which historical schema the underlying document used.
type Appointment struct {
	ID               string `json:"id"`
	ClientID         string `json:"clientId"`
	PrimaryStylistID string `json:"primaryStylistId"`
	PrimaryServiceID string `json:"primaryServiceId"`
	BranchID         string `json:"branchId"`

	Date            string `json:"date"` // 2006-01-02
	Time            string `json:"time"` // HH:mm, zero padded
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`

	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	FinalPrice    float64 `json:"finalPrice"`
	PaymentStatus string  `json:"paymentStatus"`

	ServiceStylistPairs []ServiceStylistPair `json:"serviceStylistPairs"`
	History             []HistoryEntry       `json:"history"`

	// Denormalized display fields
	ClientName      string `json:"clientName"`
	ClientPhone     string `json:"clientPhone"`
	ClientEmail     string `json:"clientEmail"`
	ClientAllergies string `json:"clientAllergies"`
	StylistName     string `json:"stylistName"`
	ServiceName     string `json:"serviceName"`
	BranchName      string `json:"branchName"`
	BranchAddress   string `json:"branchAddress"`
	BranchPhone     string `json:"branchPhone"`

	CancellationReason string    `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
