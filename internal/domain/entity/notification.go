package entity

import (
	"time"
)

// Notification event types
const (
	EventCreated     = "created"
	EventCancelled   = "cancelled"
	EventConfirmed   = "confirmed"
	EventInService   = "in_service"
	EventCompleted   = "completed"
	EventRescheduled = "rescheduled"
	EventReminder    = "reminder"
)

// Notification is the persisted in-app record of a dispatched event.
type Notification struct {
	ID            string                 `bson:"_id,omitempty" json:"id,omitempty"`
	RecipientID   string                 `bson:"recipientId" json:"recipientId"`
	RecipientRole string                 `bson:"recipientRole" json:"recipientRole"`
	Type          string                 `bson:"type" json:"type"`
	Title         string                 `bson:"title" json:"title"`
	Message       string                 `bson:"message" json:"message"`
	Data          map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	IsRead        bool                   `bson:"isRead" json:"isRead"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
	ReadAt        *time.Time             `bson:"readAt,omitempty" json:"readAt,omitempty"`
}

// DispatchContext carries everything the dispatcher needs to address and
// phrase one event. The same payload is mirrored across every channel.
type DispatchContext struct {
	AppointmentID  string
	RecipientID    string
	RecipientRole  string
	RecipientEmail string
	RecipientName  string

	ClientName  string
	ServiceName string
	Date        string
	Time        string

	// Reschedule only
	OldDate string
	OldTime string
	NewDate string
	NewTime string

	Reason string
	Data   map[string]interface{}
}

// Payload builds the free-form data payload mirrored across channels.
func (c DispatchContext) Payload(event string) map[string]interface{} {
	data := map[string]interface{}{
		"type":          event,
		"appointmentId": c.AppointmentID,
	}
	if c.Date != "" {
		data["date"] = c.Date
	}
	if c.Time != "" {
		data["time"] = c.Time
	}
	for k, v := range c.Data {
		data[k] = v
	}
	return data
}
