package usecase

import (
	"context"
	"fmt"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"
)

// UnionResolver locates appointment records scattered across the historical
// schema generations. It issues a fixed list of alternate queries covering
// every ownership field ever written for a role, unions the results by id,
// and falls back to a full-collection scan only when every indexed query
// comes back empty.
type UnionResolver struct {
	appointments repository.AppointmentRepository
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewUnionResolver creates a new union resolver
func NewUnionResolver(appointments repository.AppointmentRepository, logger logger.Logger, metrics *metrics.Metrics) *UnionResolver {
	return &UnionResolver{
		appointments: appointments,
		logger:       logger,
		metrics:      metrics,
	}
}

// AlternateFilters returns the fixed list of alternate queries for an owner
// and role. Order is stable; each inner slice is one query's conditions.
func AlternateFilters(ownerID, role string) ([][]repository.Filter, error) {
	switch role {
	case entity.RoleClient:
		return [][]repository.Filter{
			{{Field: "clientId", Op: repository.OpEqual, Value: ownerID}},
			{{Field: "userId", Op: repository.OpEqual, Value: ownerID}},
			{{Field: "clientInfo.id", Op: repository.OpEqual, Value: ownerID}},
		}, nil
	case entity.RoleStylist:
		return [][]repository.Filter{
			{{Field: "stylistId", Op: repository.OpEqual, Value: ownerID}},
			{{Field: "employeeId", Op: repository.OpEqual, Value: ownerID}},
			{{Field: "serviceStylistPairs.stylistId", Op: repository.OpArrayContains, Value: ownerID}},
			{{Field: "stylists", Op: repository.OpArrayContains, Value: ownerID}},
		}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Resolve unions the alternate queries for the owner. A failing query is
// logged and skipped; the union continues with the remaining queries.
func (r *UnionResolver) Resolve(ctx context.Context, ownerID, role string) ([]*entity.AppointmentDocument, error) {
	filters, err := AlternateFilters(ownerID, role)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var union []*entity.AppointmentDocument

	for _, query := range filters {
		docs, err := r.appointments.Query(ctx, query, "", false, 0)
		if err != nil {
			r.logger.Warn("Alternate query failed, continuing union",
				"field", query[0].Field, "ownerId", ownerID, "error", err)
			r.metrics.ErrorsCount.WithLabelValues("union_query").Inc()
			continue
		}

		for _, doc := range docs {
			if doc.ID == "" || seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			union = append(union, doc)
		}
	}

	if len(union) > 0 {
		return union, nil
	}

	// Last resort: every indexed query returned zero rows, so scan the whole
	// collection for legacy records no index covers.
	return r.fallbackScan(ctx, ownerID, role)
}

func (r *UnionResolver) fallbackScan(ctx context.Context, ownerID, role string) ([]*entity.AppointmentDocument, error) {
	r.logger.Info("All indexed queries empty, running fallback scan",
		"ownerId", ownerID, "role", role)
	r.metrics.FullScans.Inc()

	docs, err := r.appointments.ScanAll(ctx)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues("fallback_scan").Inc()
		return nil, fmt.Errorf("fallback scan failed: %w", err)
	}

	return FilterOwned(docs, ownerID, role), nil
}

// FilterOwned keeps the documents owned by the given owner under any schema
// generation, checking direct fields, serviceStylistPairs entries, and the
// legacy stylists array. Duplicates by id are removed.
func FilterOwned(docs []*entity.AppointmentDocument, ownerID, role string) []*entity.AppointmentDocument {
	seen := make(map[string]bool)
	var matched []*entity.AppointmentDocument

	for _, doc := range docs {
		if doc.ID == "" || seen[doc.ID] {
			continue
		}

		owned := false
		switch role {
		case entity.RoleClient:
			owned = doc.OwnedByClient(ownerID)
		case entity.RoleStylist:
			owned = doc.OwnedByStylist(ownerID)
		}

		if owned {
			seen[doc.ID] = true
			matched = append(matched, doc)
		}
	}

	return matched
}
