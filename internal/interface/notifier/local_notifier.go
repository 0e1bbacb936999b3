package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"salonsync-service/internal/domain/repository"
	"salonsync-service/pkg/logger"
)

// LocalNotification is one entry of the in-process notification queue
type LocalNotification struct {
	Title      string
	Body       string
	Data       map[string]interface{}
	EnqueuedAt time.Time
}

// Handler consumes a delivered local notification
type Handler func(LocalNotification)

// QueueNotifier is a bounded in-process notification queue. Enqueue never
// blocks: a full queue is an error, not backpressure.
type QueueNotifier struct {
	logger logger.Logger
	queue  chan LocalNotification

	mu       sync.RWMutex
	handlers []Handler
}

// NewQueueNotifier creates a new local notifier with the given queue size
func NewQueueNotifier(size int, logger logger.Logger) *QueueNotifier {
	if size <= 0 {
		size = 128
	}
	return &QueueNotifier{
		logger: logger,
		queue:  make(chan LocalNotification, size),
	}
}

var _ repository.LocalNotifier = (*QueueNotifier)(nil)

// Subscribe registers a handler invoked for every delivered notification
func (n *QueueNotifier) Subscribe(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

// Enqueue adds a notification to the queue without blocking
func (n *QueueNotifier) Enqueue(title, body string, data map[string]interface{}) error {
	item := LocalNotification{
		Title:      title,
		Body:       body,
		Data:       data,
		EnqueuedAt: time.Now(),
	}

	select {
	case n.queue <- item:
		return nil
	default:
		return errors.New("local notification queue full")
	}
}

// Start consumes the queue until the context is cancelled
func (n *QueueNotifier) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("Local notifier stopped")
			return
		case item := <-n.queue:
			n.deliver(item)
		}
	}
}

func (n *QueueNotifier) deliver(item LocalNotification) {
	n.mu.RLock()
	handlers := n.handlers
	n.mu.RUnlock()

	for _, handler := range handlers {
		handler(item)
	}

	n.logger.Debug("Local notification delivered", "title", item.Title)
}
