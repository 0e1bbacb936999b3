package templates

import (
	"fmt"

	"salonsync-service/internal/domain/entity"
)

// MessageBuilder renders the title and body for one event type
type MessageBuilder func(c entity.DispatchContext) (title, body string)

var builders = map[string]MessageBuilder{}

// Register registers a builder for an event type, replacing any previous one
func Register(event string, builder MessageBuilder) {
	builders[event] = builder
}

// Render returns the title and body for an event. Unknown events fall back
// to a generic update message so a dispatch never fails on phrasing.
func Render(event string, c entity.DispatchContext) (string, string) {
	if builder, ok := builders[event]; ok {
		return builder(c)
	}
	return "Appointment Update", fmt.Sprintf("Your appointment on %s at %s was updated", c.Date, c.Time)
}

func init() {
	Register(entity.EventCreated, func(c entity.DispatchContext) (string, string) {
		return "New Appointment",
			fmt.Sprintf("%s booked %s on %s at %s", displayName(c.ClientName), c.ServiceName, c.Date, c.Time)
	})

	Register(entity.EventCancelled, func(c entity.DispatchContext) (string, string) {
		body := fmt.Sprintf("The appointment for %s on %s at %s was cancelled", c.ServiceName, c.Date, c.Time)
		if c.Reason != "" {
			body = fmt.Sprintf("%s. Reason: %s", body, c.Reason)
		}
		return "Appointment Cancelled", body
	})

	Register(entity.EventConfirmed, func(c entity.DispatchContext) (string, string) {
		return "Appointment Confirmed",
			fmt.Sprintf("Your %s on %s at %s is confirmed", c.ServiceName, c.Date, c.Time)
	})

	Register(entity.EventInService, func(c entity.DispatchContext) (string, string) {
		return "Service Started",
			fmt.Sprintf("Your %s appointment is now in progress", c.ServiceName)
	})

	Register(entity.EventCompleted, func(c entity.DispatchContext) (string, string) {
		return "Service Completed",
			fmt.Sprintf("Your %s appointment is complete. Thank you for visiting!", c.ServiceName)
	})

	Register(entity.EventRescheduled, func(c entity.DispatchContext) (string, string) {
		return "Appointment Rescheduled",
			fmt.Sprintf("Your %s was moved from %s %s to %s %s",
				c.ServiceName, c.OldDate, c.OldTime, c.NewDate, c.NewTime)
	})

	Register(entity.EventReminder, func(c entity.DispatchContext) (string, string) {
		return "Upcoming Appointment",
			fmt.Sprintf("Reminder: %s on %s at %s", c.ServiceName, c.Date, c.Time)
	})
}

func displayName(name string) string {
	if name == "" {
		return "A client"
	}
	return name
}
