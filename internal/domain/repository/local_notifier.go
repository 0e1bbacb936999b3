package repository

// LocalNotifier enqueues an immediate in-process notification. It has no
// network dependency and must never block the caller.
type LocalNotifier interface {
	Enqueue(title, body string, data map[string]interface{}) error
}
