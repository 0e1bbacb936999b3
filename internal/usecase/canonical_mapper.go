package usecase

import (
	"context"
	"fmt"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"
)

// PlaceholderStylistName is shown when the stylist profile cannot be resolved
const PlaceholderStylistName = "Stylist"

// DefaultDurationMinutes applies when neither the catalog nor the legacy
// services array carries a duration
const DefaultDurationMinutes = 60

// CanonicalMapper folds a raw heterogeneous appointment document plus its
// referenced profile records into the canonical Appointment view model. Every
// resolution step has a fixed fallback chain; a secondary lookup failure
// substitutes the fallback value instead of failing the record.
type CanonicalMapper struct {
	stylists repository.StylistRepository
	services repository.ServiceRepository
	clients  repository.ClientRepository
	branches repository.BranchRepository
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewCanonicalMapper creates a new canonical mapper
func NewCanonicalMapper(
	stylists repository.StylistRepository,
	services repository.ServiceRepository,
	clients repository.ClientRepository,
	branches repository.BranchRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *CanonicalMapper {
	return &CanonicalMapper{
		stylists: stylists,
		services: services,
		clients:  clients,
		branches: branches,
		logger:   logger,
		metrics:  metrics,
	}
}

// Map converts one raw document into the canonical view model. It performs up
// to four secondary reads (stylist, service, branch, client) per record;
// mapping a list is O(n) secondary reads.
func (m *CanonicalMapper) Map(ctx context.Context, doc *entity.AppointmentDocument) (*entity.Appointment, error) {
	if doc == nil || doc.ID == "" {
		return nil, fmt.Errorf("appointment document has no id")
	}

	appt := &entity.Appointment{
		ID:                  doc.ID,
		ClientID:            doc.ClientID,
		BranchID:            doc.BranchID,
		Date:                doc.Date,
		Time:                doc.Time,
		EndTime:             doc.EndTime,
		Status:              doc.Status,
		PaymentStatus:       doc.PaymentStatus,
		ServiceStylistPairs: doc.ServiceStylistPairs,
		History:             doc.History,
		CancellationReason:  doc.CancellationReason,
		CreatedAt:           doc.CreatedAt,
	}
	if appt.Status == "" {
		appt.Status = entity.StatusPending
	}
	if appt.ClientID == "" {
		appt.ClientID = doc.UserID
	}

	// Primary stylist and service ids come from the first pair entry only
	if len(doc.ServiceStylistPairs) > 0 {
		appt.PrimaryStylistID = doc.ServiceStylistPairs[0].StylistID
		appt.PrimaryServiceID = doc.ServiceStylistPairs[0].ServiceID
	}

	appt.StylistName = m.resolveStylistName(ctx, appt.PrimaryStylistID)

	service := m.resolveService(ctx, doc, appt.PrimaryServiceID)
	if service != nil {
		appt.ServiceName = service.Name
	}

	branch := m.resolveBranch(ctx, doc.BranchID)
	appt.BranchName = branch.Name
	appt.BranchAddress = branch.Address
	appt.BranchPhone = branch.Phone

	m.resolveClientContact(ctx, doc, appt)

	appt.Price = resolvePrice(doc, service)
	if doc.Discount != nil {
		appt.Discount = *doc.Discount
	}
	if doc.FinalPrice != nil {
		appt.FinalPrice = *doc.FinalPrice
	} else {
		// No explicit discount-adjusted value stored
		appt.FinalPrice = appt.Price
	}

	appt.DurationMinutes = resolveDuration(doc, service)
	if appt.EndTime == "" {
		appt.EndTime = addMinutes(appt.Time, appt.DurationMinutes)
	}

	return appt, nil
}

// MapAll maps a batch. A record that fails to map is logged and dropped; the
// remaining records are unaffected.
func (m *CanonicalMapper) MapAll(ctx context.Context, docs []*entity.AppointmentDocument) []*entity.Appointment {
	mapped := make([]*entity.Appointment, 0, len(docs))

	for _, doc := range docs {
		appt, err := m.Map(ctx, doc)
		if err != nil {
			m.logger.Warn("Skipping unmappable appointment record", "error", err)
			m.metrics.RecordsSkipped.Inc()
			continue
		}
		mapped = append(mapped, appt)
		m.metrics.AppointmentsMapped.Inc()
	}

	return mapped
}

func (m *CanonicalMapper) resolveStylistName(ctx context.Context, stylistID string) string {
	if stylistID == "" {
		return PlaceholderStylistName
	}
	stylist, err := m.stylists.GetByID(ctx, stylistID)
	if err != nil {
		m.logger.Debug("Stylist lookup failed, using placeholder",
			"stylistId", stylistID, "error", err)
		return PlaceholderStylistName
	}
	return stylist.Name
}

// resolveService fetches the catalog entry for the primary service id, else
// reshapes the first legacy services entry, else returns nil.
func (m *CanonicalMapper) resolveService(ctx context.Context, doc *entity.AppointmentDocument, primaryServiceID string) *entity.SalonService {
	serviceID := primaryServiceID
	if serviceID == "" {
		serviceID = doc.ServiceID
	}

	if serviceID != "" {
		service, err := m.services.GetByID(ctx, serviceID)
		if err == nil {
			return service
		}
		m.logger.Debug("Service lookup failed, trying legacy entries",
			"serviceId", serviceID, "error", err)
	}

	if len(doc.Services) > 0 {
		legacy := doc.Services[0]
		id := legacy.ServiceID
		if id == "" {
			id = legacy.ID
		}
		return &entity.SalonService{
			ID:              id,
			Name:            legacy.Name,
			Price:           legacy.Price,
			DurationMinutes: legacy.Duration,
		}
	}

	return nil
}

func (m *CanonicalMapper) resolveBranch(ctx context.Context, branchID string) *entity.Branch {
	if branchID == "" {
		return entity.PlaceholderBranch("")
	}
	branch, err := m.branches.GetByID(ctx, branchID)
	if err != nil {
		m.logger.Debug("Branch lookup failed, using placeholder",
			"branchId", branchID, "error", err)
		return entity.PlaceholderBranch(branchID)
	}
	return branch
}

// resolveClientContact fills the client display fields from the profile
// record, falling back to the denormalized snapshot embedded on the document.
func (m *CanonicalMapper) resolveClientContact(ctx context.Context, doc *entity.AppointmentDocument, appt *entity.Appointment) {
	if appt.ClientID != "" {
		client, err := m.clients.GetByID(ctx, appt.ClientID)
		if err == nil {
			appt.ClientName = client.Name
			appt.ClientPhone = client.Phone
			appt.ClientEmail = client.Email
			appt.ClientAllergies = client.Allergies
			return
		}
		m.logger.Debug("Client lookup failed, using embedded info",
			"clientId", appt.ClientID, "error", err)
	}

	if doc.ClientInfo != nil {
		appt.ClientName = doc.ClientInfo.Name
		appt.ClientPhone = doc.ClientInfo.Phone
		appt.ClientEmail = doc.ClientInfo.Email
		appt.ClientAllergies = doc.ClientInfo.Allergies
	}
	if appt.ClientName == "" {
		appt.ClientName = doc.ClientName
	}
}

// resolvePrice applies the fixed precedence: services array sum, pairs sum,
// explicit totalPrice, fetched service price, stored totalCost/price, zero.
// The order decides which of several inconsistent sources wins and must not
// be rearranged.
func resolvePrice(doc *entity.AppointmentDocument, service *entity.SalonService) float64 {
	if len(doc.Services) > 0 {
		var total float64
		for _, entry := range doc.Services {
			total += entry.Price
		}
		return total
	}

	if len(doc.ServiceStylistPairs) > 0 {
		var total float64
		for _, pair := range doc.ServiceStylistPairs {
			total += pair.ServicePrice
		}
		return total
	}

	if doc.TotalPrice != nil {
		return *doc.TotalPrice
	}

	if service != nil {
		return service.Price
	}

	if doc.TotalCost != nil {
		return *doc.TotalCost
	}
	if doc.Price != nil {
		return *doc.Price
	}

	return 0
}

// resolveDuration prefers the fetched service's duration, then the first
// legacy service entry, then the default.
func resolveDuration(doc *entity.AppointmentDocument, service *entity.SalonService) int {
	if service != nil && service.DurationMinutes > 0 {
		return service.DurationMinutes
	}
	if len(doc.Services) > 0 && doc.Services[0].Duration > 0 {
		return doc.Services[0].Duration
	}
	return DefaultDurationMinutes
}

// addMinutes computes an end time from a zero-padded HH:mm start. An
// unparseable start yields an empty end time.
func addMinutes(start string, minutes int) string {
	t, err := time.Parse("15:04", start)
	if err != nil {
		return ""
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}
