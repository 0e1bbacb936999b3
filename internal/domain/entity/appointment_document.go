package entity

import (
	"time"
)

// SchemaVariant identifies which historical write shape an appointment
// document was stored with.
type SchemaVariant string

const (
	VariantPairs        SchemaVariant = "pairs"         // serviceStylistPairs array
	VariantLegacyArray  SchemaVariant = "legacy_array"  // services / stylists arrays
	VariantLegacyDirect SchemaVariant = "legacy_direct" // direct stylistId / serviceId
)

// LegacyServiceEntry is one element of the legacy `services` array. Older
// writers used `id`, newer ones `serviceId`; both appear in production data.
type LegacyServiceEntry struct {
	ID        string  `bson:"id,omitempty"`
	ServiceID string  `bson:"serviceId,omitempty"`
	Name      string  `bson:"name,omitempty"`
	Price     float64 `bson:"price,omitempty"`
	Duration  int     `bson:"duration,omitempty"`
}

// EmbeddedClientInfo is the denormalized client snapshot some legacy writers
// embedded instead of a clientId reference.
type EmbeddedClientInfo struct {
	ID        string `bson:"id,omitempty"`
	Name      string `bson:"name,omitempty"`
	Phone     string `bson:"phone,omitempty"`
	Email     string `bson:"email,omitempty"`
	Allergies string `bson:"allergies,omitempty"`
}

// AppointmentDocument is the raw persisted appointment record. Every field is
// optional: at least three historical schemas coexist in the collection and no
// single document is assumed complete.
type AppointmentDocument struct {
	ID string `bson:"_id,omitempty"`

	// Ownership fields across schema generations
	ClientID   string `bson:"clientId,omitempty"`
	UserID     string `bson:"userId,omitempty"`
	StylistID  string `bson:"stylistId,omitempty"`
	EmployeeID string `bson:"employeeId,omitempty"`

	ServiceID string `bson:"serviceId,omitempty"`
	BranchID  string `bson:"branchId,omitempty"`

	Date    string `bson:"date,omitempty"`
	Time    string `bson:"time,omitempty"`
	EndTime string `bson:"endTime,omitempty"`
	Status  string `bson:"status,omitempty"`

	TotalPrice    *float64 `bson:"totalPrice,omitempty"`
	TotalCost     *float64 `bson:"totalCost,omitempty"`
	Price         *float64 `bson:"price,omitempty"`
	Discount      *float64 `bson:"discount,omitempty"`
	FinalPrice    *float64 `bson:"finalPrice,omitempty"`
	PaymentStatus string   `bson:"paymentStatus,omitempty"`

	Services            []LegacyServiceEntry `bson:"services,omitempty"`
	Stylists            []string             `bson:"stylists,omitempty"`
	ServiceStylistPairs []ServiceStylistPair `bson:"serviceStylistPairs,omitempty"`

	ClientName string              `bson:"clientName,omitempty"`
	ClientInfo *EmbeddedClientInfo `bson:"clientInfo,omitempty"`

	History            []HistoryEntry `bson:"history,omitempty"`
	CancellationReason string         `bson:"cancellationReason,omitempty"`

	ReminderSentAt *time.Time `bson:"reminderSentAt,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt,omitempty"`
	UpdatedAt      time.Time  `bson:"updatedAt,omitempty"`
}

// Variant classifies the document into the schema generation that wrote it.
func (d *AppointmentDocument) Variant() SchemaVariant {
	if len(d.ServiceStylistPairs) > 0 {
		return VariantPairs
	}
	if len(d.Services) > 0 || len(d.Stylists) > 0 {
		return VariantLegacyArray
	}
	return VariantLegacyDirect
}

// OwnedByStylist reports whether any ownership field of the document, across
// all schema generations, references the given stylist.
func (d *AppointmentDocument) OwnedByStylist(stylistID string) bool {
	if stylistID == "" {
		return false
	}
	if d.StylistID == stylistID || d.EmployeeID == stylistID {
		return true
	}
	for _, pair := range d.ServiceStylistPairs {
		if pair.StylistID == stylistID {
			return true
		}
	}
	for _, id := range d.Stylists {
		if id == stylistID {
			return true
		}
	}
	return false
}

// OwnedByClient reports whether the document belongs to the given client
// under any schema generation.
func (d *AppointmentDocument) OwnedByClient(clientID string) bool {
	if clientID == "" {
		return false
	}
	if d.ClientID == clientID || d.UserID == clientID {
		return true
	}
	return d.ClientInfo != nil && d.ClientInfo.ID == clientID
}
