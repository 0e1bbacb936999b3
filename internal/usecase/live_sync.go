package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"
)

// LiveSyncEngine keeps a caller's appointment list live. It opens one change
// subscription on the primary ownership field and re-runs the union resolver
// and canonical mapper on every change signal. Remaps are serialized per
// subscription: the feed channel coalesces signals, and one goroutine drains
// it, so two remaps for the same subscriber never race to invoke the
// callback.
type LiveSyncEngine struct {
	appointments repository.AppointmentRepository
	resolver     *UnionResolver
	mapper       *CanonicalMapper
	logger       logger.Logger
	metrics      *metrics.Metrics
}

// NewLiveSyncEngine creates a new live sync engine
func NewLiveSyncEngine(
	appointments repository.AppointmentRepository,
	resolver *UnionResolver,
	mapper *CanonicalMapper,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *LiveSyncEngine {
	return &LiveSyncEngine{
		appointments: appointments,
		resolver:     resolver,
		mapper:       mapper,
		logger:       logger,
		metrics:      metrics,
	}
}

// primaryOwnershipField is the indexed field the change subscription watches
func primaryOwnershipField(role string) string {
	if role == entity.RoleStylist {
		return "stylistId"
	}
	return "clientId"
}

// Subscribe opens a live subscription and returns an unsubscribe function.
// The callback receives the full deduplicated, sorted list once per batch.
// The returned function is safe to call multiple times. A subscription error
// ends the feed without automatic retry; retry and backoff belong to the
// caller.
func (e *LiveSyncEngine) Subscribe(ctx context.Context, ownerID, role string, callback func([]*entity.Appointment)) (func(), error) {
	field := primaryOwnershipField(role)
	sub, err := e.appointments.Watch(ctx, repository.Filter{
		Field: field,
		Op:    repository.OpEqual,
		Value: ownerID,
	})
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	var closed atomic.Bool

	deliver := func() {
		list := e.remap(subCtx, ownerID, role)
		// Guard against a remap finishing after unsubscribe
		if closed.Load() || subCtx.Err() != nil {
			return
		}
		callback(list)
	}

	go func() {
		// The change stream only reports future writes, so emit the current
		// state first.
		deliver()

		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-sub.Changes():
				if !ok {
					if err := sub.Err(); err != nil {
						e.logger.Error("Appointment subscription ended",
							"ownerId", ownerID, "role", role, "error", err)
						e.metrics.ErrorsCount.WithLabelValues("live_sync").Inc()
					}
					return
				}
				deliver()
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			closed.Store(true)
			cancel()
			if err := sub.Close(context.Background()); err != nil {
				e.logger.Warn("Failed to close change subscription", "error", err)
			}
		})
	}

	return unsubscribe, nil
}

// remap re-runs the resolver and mapper pipeline. For the stylist role the
// full collection is re-scanned on every batch to catch non-indexed legacy
// matches, mirroring the resolver's fallback.
func (e *LiveSyncEngine) remap(ctx context.Context, ownerID, role string) []*entity.Appointment {
	start := time.Now()
	defer func() {
		e.metrics.RemapDuration.Observe(time.Since(start).Seconds())
	}()

	docs, err := e.resolver.Resolve(ctx, ownerID, role)
	if err != nil {
		e.logger.Error("Union resolve failed during remap",
			"ownerId", ownerID, "role", role, "error", err)
		docs = nil
	}

	if role == entity.RoleStylist {
		docs = e.mergeFullScan(ctx, docs, ownerID, role)
	}

	mapped := e.mapper.MapAll(ctx, docs)
	SortAppointments(mapped)
	return mapped
}

func (e *LiveSyncEngine) mergeFullScan(ctx context.Context, docs []*entity.AppointmentDocument, ownerID, role string) []*entity.AppointmentDocument {
	e.metrics.FullScans.Inc()

	all, err := e.appointments.ScanAll(ctx)
	if err != nil {
		e.logger.Warn("Full rescan failed, keeping indexed results",
			"ownerId", ownerID, "error", err)
		e.metrics.ErrorsCount.WithLabelValues("live_sync_scan").Inc()
		return docs
	}

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		seen[doc.ID] = true
	}

	for _, doc := range FilterOwned(all, ownerID, role) {
		if !seen[doc.ID] {
			seen[doc.ID] = true
			docs = append(docs, doc)
		}
	}

	return docs
}

// SortAppointments orders by date descending, then time descending. Dates are
// ISO formatted and times zero-padded HH:mm, so string comparison is
// chronological. The sort is stable.
func SortAppointments(appointments []*entity.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date > appointments[j].Date
		}
		return appointments[i].Time > appointments[j].Time
	})
}
