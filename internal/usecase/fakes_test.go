package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"salonsync-service/internal/domain/entity"
	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"
)

// Shared across the package: promauto registers against the default
// registry, so metrics must be created exactly once per test binary.
var testMetrics = metrics.NewMetrics("salonsync_test")

func floatPtr(v float64) *float64 { return &v }

type fakeAppointmentStore struct {
	mu       sync.Mutex
	docs     map[string]*entity.AppointmentDocument
	queryErr map[string]error // per filter field
	scanErr  error
	watchErr error

	queriedFields []string
	scans         int
	subs          []*fakeSubscription
}

func newFakeAppointmentStore(docs ...*entity.AppointmentDocument) *fakeAppointmentStore {
	store := &fakeAppointmentStore{
		docs:     make(map[string]*entity.AppointmentDocument),
		queryErr: make(map[string]error),
	}
	for _, doc := range docs {
		store.docs[doc.ID] = doc
	}
	return store
}

func (s *fakeAppointmentStore) sortedDocs() []*entity.AppointmentDocument {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]*entity.AppointmentDocument, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.docs[id])
	}
	return docs
}

func matchesFilter(doc *entity.AppointmentDocument, f repository.Filter) bool {
	value, _ := f.Value.(string)
	switch f.Field {
	case "clientId":
		return doc.ClientID == value
	case "userId":
		return doc.UserID == value
	case "clientInfo.id":
		return doc.ClientInfo != nil && doc.ClientInfo.ID == value
	case "stylistId":
		return doc.StylistID == value
	case "employeeId":
		return doc.EmployeeID == value
	case "serviceStylistPairs.stylistId":
		for _, pair := range doc.ServiceStylistPairs {
			if pair.StylistID == value {
				return true
			}
		}
		return false
	case "stylists":
		for _, id := range doc.Stylists {
			if id == value {
				return true
			}
		}
		return false
	case "status":
		return doc.Status == value
	}
	return false
}

func (s *fakeAppointmentStore) Query(ctx context.Context, filters []repository.Filter, orderBy string, descending bool, limit int64) ([]*entity.AppointmentDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queriedFields = append(s.queriedFields, filters[0].Field)
	if err, ok := s.queryErr[filters[0].Field]; ok {
		return nil, err
	}

	var matched []*entity.AppointmentDocument
	for _, doc := range s.sortedDocs() {
		ok := true
		for _, f := range filters {
			if !matchesFilter(doc, f) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

func (s *fakeAppointmentStore) GetByID(ctx context.Context, id string) (*entity.AppointmentDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeAppointmentStore) ScanAll(ctx context.Context) ([]*entity.AppointmentDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans++
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.sortedDocs(), nil
}

func (s *fakeAppointmentStore) Insert(ctx context.Context, doc *entity.AppointmentDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *fakeAppointmentStore) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return entity.ErrNotFound
	}
	for key, raw := range patch {
		switch key {
		case "status":
			doc.Status, _ = raw.(string)
		case "cancellationReason":
			doc.CancellationReason, _ = raw.(string)
		case "date":
			doc.Date, _ = raw.(string)
		case "time":
			doc.Time, _ = raw.(string)
		case "paymentStatus":
			doc.PaymentStatus, _ = raw.(string)
		case "reminderSentAt":
			if t, ok := raw.(time.Time); ok {
				doc.ReminderSentAt = &t
			}
		}
	}
	return nil
}

func (s *fakeAppointmentStore) AppendHistory(ctx context.Context, id string, entry entity.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return entity.ErrNotFound
	}
	doc.History = append(doc.History, entry)
	return nil
}

func (s *fakeAppointmentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeAppointmentStore) Watch(ctx context.Context, filter repository.Filter) (repository.ChangeSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	sub := &fakeSubscription{ch: make(chan struct{}, 1)}
	s.subs = append(s.subs, sub)
	return sub, nil
}

type fakeSubscription struct {
	mu     sync.Mutex
	ch     chan struct{}
	err    error
	closed bool
}

func (s *fakeSubscription) trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *fakeSubscription) Changes() <-chan struct{} { return s.ch }
func (s *fakeSubscription) Err() error               { return s.err }

func (s *fakeSubscription) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

type fakeStylistRepo struct {
	stylists map[string]*entity.Stylist
	err      error
}

func (r *fakeStylistRepo) GetByID(ctx context.Context, id string) (*entity.Stylist, error) {
	if r.err != nil {
		return nil, r.err
	}
	stylist, ok := r.stylists[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return stylist, nil
}

type fakeServiceRepo struct {
	services map[string]*entity.SalonService
	err      error
}

func (r *fakeServiceRepo) GetByID(ctx context.Context, id string) (*entity.SalonService, error) {
	if r.err != nil {
		return nil, r.err
	}
	service, ok := r.services[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return service, nil
}

type fakeClientRepo struct {
	clients map[string]*entity.Client
	err     error
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	if r.err != nil {
		return nil, r.err
	}
	client, ok := r.clients[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return client, nil
}

type fakeBranchRepo struct {
	branches map[string]*entity.Branch
	err      error
}

func (r *fakeBranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	if r.err != nil {
		return nil, r.err
	}
	branch, ok := r.branches[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return branch, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	inserted  []*entity.Notification
	insertErr error
	read      []string
	allRead   []string
}

func (r *fakeNotificationRepo) Insert(ctx context.Context, n *entity.Notification) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return "", r.insertErr
	}
	if n.ID == "" {
		n.ID = "n-fake"
	}
	r.inserted = append(r.inserted, n)
	return n.ID, nil
}

func (r *fakeNotificationRepo) FindByRecipient(ctx context.Context, recipientID string, limit int64) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.inserted {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.inserted {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.inserted {
		if n.ID == id {
			n.IsRead = true
			r.read = append(r.read, id)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.inserted {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	r.allRead = append(r.allRead, recipientID)
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.inserted {
		if n.ID == id {
			r.inserted = append(r.inserted[:i], r.inserted[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *fakeNotificationRepo) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.Notification
	var deleted int64
	for _, n := range r.inserted {
		if n.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.inserted = kept
	return deleted, nil
}

type fakeTokenRepo struct {
	mu          sync.Mutex
	tokens      map[string][]*entity.PushToken
	err         error
	deactivated []string
}

func (r *fakeTokenRepo) FindActiveByUser(ctx context.Context, userID string) ([]*entity.PushToken, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tokens[userID], nil
}

func (r *fakeTokenRepo) Save(ctx context.Context, token *entity.PushToken) error { return nil }

func (r *fakeTokenRepo) Deactivate(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivated = append(r.deactivated, token)
	return nil
}

type sentPush struct {
	token string
	title string
	body  string
}

type fakePushGateway struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (g *fakePushGateway) SendRemote(ctx context.Context, token, title, body string, data map[string]interface{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.sent = append(g.sent, sentPush{token: token, title: title, body: body})
	return "ticket-1", nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (s *fakeEmailSender) Send(ctx context.Context, toAddress, toName, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{to: toAddress, subject: subject, body: body})
	return nil
}

type fakeLocalNotifier struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (n *fakeLocalNotifier) Enqueue(title, body string, data map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.enqueued = append(n.enqueued, title)
	return nil
}

// testEnv wires the whole pipeline against fakes.
type testEnv struct {
	store    *fakeAppointmentStore
	stylists *fakeStylistRepo
	services *fakeServiceRepo
	clients  *fakeClientRepo
	branches *fakeBranchRepo
	notifs   *fakeNotificationRepo
	tokens   *fakeTokenRepo
	push     *fakePushGateway
	email    *fakeEmailSender
	local    *fakeLocalNotifier

	resolver   *UnionResolver
	mapper     *CanonicalMapper
	liveSync   *LiveSyncEngine
	dispatcher *NotificationDispatcher
	service    *AppointmentService
}

func newTestEnv(docs ...*entity.AppointmentDocument) *testEnv {
	log := logger.NewNopLogger()

	env := &testEnv{
		store:    newFakeAppointmentStore(docs...),
		stylists: &fakeStylistRepo{stylists: map[string]*entity.Stylist{}},
		services: &fakeServiceRepo{services: map[string]*entity.SalonService{}},
		clients:  &fakeClientRepo{clients: map[string]*entity.Client{}},
		branches: &fakeBranchRepo{branches: map[string]*entity.Branch{}},
		notifs:   &fakeNotificationRepo{},
		tokens:   &fakeTokenRepo{tokens: map[string][]*entity.PushToken{}},
		push:     &fakePushGateway{},
		email:    &fakeEmailSender{},
		local:    &fakeLocalNotifier{},
	}

	env.resolver = NewUnionResolver(env.store, log, testMetrics)
	env.mapper = NewCanonicalMapper(env.stylists, env.services, env.clients, env.branches, log, testMetrics)
	env.liveSync = NewLiveSyncEngine(env.store, env.resolver, env.mapper, log, testMetrics)
	env.dispatcher = NewNotificationDispatcher(env.tokens, env.push, env.email, env.local, env.notifs, log, testMetrics)
	env.service = NewAppointmentService(env.store, env.resolver, env.mapper, env.liveSync, env.dispatcher, env.stylists, env.clients, log)
	return env
}
