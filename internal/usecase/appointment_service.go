package usecase

import (
	"context"
	"fmt"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"

	"github.com/google/uuid"
)

// AppointmentService is the caller-facing API over the resolver, mapper,
// live sync engine, and dispatcher. Every mutating operation persists its
// primary effect first; notification dispatch runs after and can never undo
// or block it.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	resolver     *UnionResolver
	mapper       *CanonicalMapper
	liveSync     *LiveSyncEngine
	dispatcher   *NotificationDispatcher
	stylists     repository.StylistRepository
	clients      repository.ClientRepository
	logger       logger.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointments repository.AppointmentRepository,
	resolver *UnionResolver,
	mapper *CanonicalMapper,
	liveSync *LiveSyncEngine,
	dispatcher *NotificationDispatcher,
	stylists repository.StylistRepository,
	clients repository.ClientRepository,
	logger logger.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		resolver:     resolver,
		mapper:       mapper,
		liveSync:     liveSync,
		dispatcher:   dispatcher,
		stylists:     stylists,
		clients:      clients,
		logger:       logger,
	}
}

// GetAppointments returns the canonical appointment list for an owner,
// sorted by date then time, both descending.
func (s *AppointmentService) GetAppointments(ctx context.Context, ownerID, role string) ([]*entity.Appointment, error) {
	docs, err := s.resolver.Resolve(ctx, ownerID, role)
	if err != nil {
		return nil, err
	}

	mapped := s.mapper.MapAll(ctx, docs)
	SortAppointments(mapped)
	return mapped, nil
}

// SubscribeAppointments opens a live subscription. See LiveSyncEngine.
func (s *AppointmentService) SubscribeAppointments(ctx context.Context, ownerID, role string, callback func([]*entity.Appointment)) (func(), error) {
	return s.liveSync.Subscribe(ctx, ownerID, role, callback)
}

// CreateAppointment persists a new appointment and dispatches a created
// event to the resolved primary stylist.
func (s *AppointmentService) CreateAppointment(ctx context.Context, doc *entity.AppointmentDocument) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = entity.StatusPending
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.History = append(doc.History, entity.HistoryEntry{
		Action:    "created",
		Timestamp: now,
		NewStatus: doc.Status,
	})

	if err := s.appointments.Insert(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create appointment: %w", err)
	}

	s.dispatchToStylist(ctx, entity.EventCreated, doc, "")
	return doc.ID, nil
}

// UpdateAppointment applies a field patch. A status change is validated
// against the state machine and, when the stored status actually changes,
// triggers the matching dispatch. Re-writing the same status is a no-op for
// notifications.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id string, patch map[string]interface{}, actor string) error {
	doc, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("update appointment %s: %w", id, err)
	}

	oldStatus := doc.Status
	if oldStatus == "" {
		oldStatus = entity.StatusPending
	}

	newStatus, statusChanging := "", false
	if raw, ok := patch["status"]; ok {
		newStatus, _ = raw.(string)
		statusChanging = newStatus != "" && newStatus != oldStatus
		if statusChanging && !entity.CanTransition(oldStatus, newStatus) {
			return fmt.Errorf("appointment %s: %s -> %s: %w",
				id, oldStatus, newStatus, entity.ErrInvalidTransition)
		}
	}

	// Augment a copy, the caller's map stays untouched
	update := make(map[string]interface{}, len(patch)+1)
	for key, value := range patch {
		update[key] = value
	}
	update["updatedAt"] = time.Now()
	if err := s.appointments.Update(ctx, id, update); err != nil {
		return err
	}

	if !statusChanging {
		return nil
	}

	if err := s.appointments.AppendHistory(ctx, id, entity.HistoryEntry{
		Action:    "status_changed",
		Timestamp: time.Now(),
		Actor:     actor,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}); err != nil {
		s.logger.Warn("Failed to append status history", "id", id, "error", err)
	}

	reason := doc.CancellationReason
	if raw, ok := patch["cancellationReason"]; ok {
		if v, ok := raw.(string); ok {
			reason = v
		}
	}
	s.dispatchStatusChange(ctx, doc, newStatus, reason)
	return nil
}

// dispatchStatusChange fires the event matching the new status. Runs only
// when the stored status actually changed.
func (s *AppointmentService) dispatchStatusChange(ctx context.Context, doc *entity.AppointmentDocument, newStatus, reason string) {
	switch newStatus {
	case entity.StatusConfirmed:
		s.dispatchToClient(ctx, entity.EventConfirmed, doc)
	case entity.StatusInProgress:
		s.dispatchToClient(ctx, entity.EventInService, doc)
	case entity.StatusCompleted:
		s.dispatchToClient(ctx, entity.EventCompleted, doc)
	case entity.StatusCancelled:
		s.dispatchToStylist(ctx, entity.EventCancelled, doc, reason)
	}
}

// CancelAppointment sets the cancelled status and reason, then notifies the
// resolved primary stylist. The cancellation dispatch always fires for any
// non-terminal previous status, and a dispatch failure never affects the
// persisted cancellation.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id, reason string) error {
	doc, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel appointment %s: %w", id, err)
	}

	if entity.IsTerminalStatus(doc.Status) {
		return fmt.Errorf("appointment %s: %s -> %s: %w",
			id, doc.Status, entity.StatusCancelled, entity.ErrInvalidTransition)
	}

	now := time.Now()
	patch := map[string]interface{}{
		"status":             entity.StatusCancelled,
		"cancellationReason": reason,
		"updatedAt":          now,
	}
	if err := s.appointments.Update(ctx, id, patch); err != nil {
		return err
	}

	if err := s.appointments.AppendHistory(ctx, id, entity.HistoryEntry{
		Action:    "cancelled",
		Timestamp: now,
		OldStatus: doc.Status,
		NewStatus: entity.StatusCancelled,
		Notes:     reason,
	}); err != nil {
		s.logger.Warn("Failed to append cancellation history", "id", id, "error", err)
	}

	s.dispatchToStylist(ctx, entity.EventCancelled, doc, reason)
	return nil
}

// RescheduleAppointment moves an appointment to a new date and time. Status
// stays scheduled; the move is recorded as a history entry and announced to
// the client.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, id, newDate, newTime, notes string) error {
	doc, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reschedule appointment %s: %w", id, err)
	}

	oldDate, oldTime := doc.Date, doc.Time
	now := time.Now()

	patch := map[string]interface{}{
		"date":      newDate,
		"time":      newTime,
		"status":    entity.StatusScheduled,
		"updatedAt": now,
	}
	if err := s.appointments.Update(ctx, id, patch); err != nil {
		return err
	}

	if err := s.appointments.AppendHistory(ctx, id, entity.HistoryEntry{
		Action:    "rescheduled",
		Timestamp: now,
		OldDate:   oldDate,
		OldTime:   oldTime,
		NewDate:   newDate,
		NewTime:   newTime,
		Notes:     notes,
	}); err != nil {
		s.logger.Warn("Failed to append reschedule history", "id", id, "error", err)
	}

	dctx := s.clientContext(ctx, doc)
	dctx.OldDate, dctx.OldTime = oldDate, oldTime
	dctx.NewDate, dctx.NewTime = newDate, newTime
	s.dispatch(ctx, entity.EventRescheduled, dctx)
	return nil
}

// SendReminders dispatches a reminder for every appointment starting within
// the lead window that has not been reminded yet.
func (s *AppointmentService) SendReminders(ctx context.Context, lead time.Duration) error {
	now := time.Now()
	windowEnd := now.Add(lead)

	docs, err := s.appointments.Query(ctx, []repository.Filter{
		{Field: "status", Op: repository.OpEqual, Value: entity.StatusScheduled},
	}, "date", false, 0)
	if err != nil {
		return fmt.Errorf("reminder query failed: %w", err)
	}

	for _, doc := range docs {
		if doc.ReminderSentAt != nil {
			continue
		}
		startsAt, err := time.ParseInLocation("2006-01-02 15:04", doc.Date+" "+doc.Time, time.Local)
		if err != nil {
			continue
		}
		if startsAt.Before(now) || startsAt.After(windowEnd) {
			continue
		}

		s.dispatchToClient(ctx, entity.EventReminder, doc)

		if err := s.appointments.Update(ctx, doc.ID, map[string]interface{}{
			"reminderSentAt": now,
		}); err != nil {
			s.logger.Warn("Failed to stamp reminder", "id", doc.ID, "error", err)
		}
	}

	return nil
}

// primaryStylistID resolves the stylist a dispatch should address: first
// pair entry, then the direct legacy field, then the legacy stylists array.
func primaryStylistID(doc *entity.AppointmentDocument) string {
	if len(doc.ServiceStylistPairs) > 0 {
		return doc.ServiceStylistPairs[0].StylistID
	}
	if doc.StylistID != "" {
		return doc.StylistID
	}
	if doc.EmployeeID != "" {
		return doc.EmployeeID
	}
	if len(doc.Stylists) > 0 {
		return doc.Stylists[0]
	}
	return ""
}

func (s *AppointmentService) dispatchToStylist(ctx context.Context, event string, doc *entity.AppointmentDocument, reason string) {
	stylistID := primaryStylistID(doc)

	dctx := entity.DispatchContext{
		AppointmentID: doc.ID,
		RecipientID:   stylistID,
		RecipientRole: entity.RoleStylist,
		ClientName:    clientDisplayName(doc),
		ServiceName:   serviceDisplayName(doc),
		Date:          doc.Date,
		Time:          doc.Time,
		Reason:        reason,
	}

	if stylistID != "" {
		if stylist, err := s.stylists.GetByID(ctx, stylistID); err == nil {
			dctx.RecipientEmail = stylist.Email
			dctx.RecipientName = stylist.Name
		} else {
			s.logger.Debug("Stylist profile lookup failed for dispatch",
				"stylistId", stylistID, "error", err)
		}
	}

	s.dispatch(ctx, event, dctx)
}

func (s *AppointmentService) dispatchToClient(ctx context.Context, event string, doc *entity.AppointmentDocument) {
	s.dispatch(ctx, event, s.clientContext(ctx, doc))
}

func (s *AppointmentService) clientContext(ctx context.Context, doc *entity.AppointmentDocument) entity.DispatchContext {
	clientID := doc.ClientID
	if clientID == "" {
		clientID = doc.UserID
	}

	dctx := entity.DispatchContext{
		AppointmentID: doc.ID,
		RecipientID:   clientID,
		RecipientRole: entity.RoleClient,
		ClientName:    clientDisplayName(doc),
		ServiceName:   serviceDisplayName(doc),
		Date:          doc.Date,
		Time:          doc.Time,
	}

	if clientID != "" {
		if client, err := s.clients.GetByID(ctx, clientID); err == nil {
			dctx.RecipientEmail = client.Email
			dctx.RecipientName = client.Name
		} else if doc.ClientInfo != nil {
			dctx.RecipientEmail = doc.ClientInfo.Email
			dctx.RecipientName = doc.ClientInfo.Name
		}
	}

	return dctx
}

// dispatch is fire-and-forget relative to the primary mutation: failures are
// logged and the per-channel results discarded.
func (s *AppointmentService) dispatch(ctx context.Context, event string, dctx entity.DispatchContext) {
	if _, err := s.dispatcher.Dispatch(ctx, event, dctx); err != nil {
		s.logger.Warn("Dispatch not attempted", "event", event,
			"appointmentId", dctx.AppointmentID, "error", err)
	}
}

func clientDisplayName(doc *entity.AppointmentDocument) string {
	if doc.ClientName != "" {
		return doc.ClientName
	}
	if doc.ClientInfo != nil {
		return doc.ClientInfo.Name
	}
	return ""
}

func serviceDisplayName(doc *entity.AppointmentDocument) string {
	if len(doc.ServiceStylistPairs) > 0 && doc.ServiceStylistPairs[0].ServiceName != "" {
		return doc.ServiceStylistPairs[0].ServiceName
	}
	if len(doc.Services) > 0 && doc.Services[0].Name != "" {
		return doc.Services[0].Name
	}
	return "appointment"
}
