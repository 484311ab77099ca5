package queue

import (
	"sync"

	"go.uber.org/zap"
)

// LocalQueue dispatches events to in-process subscribers. It is used when no
// broker is configured; handlers run on their own goroutine per message.
type LocalQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func([]byte) error
	wg       sync.WaitGroup
	closed   bool
	log      *zap.Logger
}

func NewLocalQueue(log *zap.Logger) *LocalQueue {
	return &LocalQueue{
		handlers: make(map[string][]func([]byte) error),
		log:      log,
	}
}

func (q *LocalQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil
	}

	for _, h := range q.handlers[subject] {
		q.wg.Add(1)
		go func(h func([]byte) error) {
			defer q.wg.Done()
			if err := h(data); err != nil {
				q.log.Error("Error processing message", zap.String("subject", subject), zap.Error(err))
			}
		}(h)
	}
	return nil
}

func (q *LocalQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[subject] = append(q.handlers[subject], handler)
	return nil
}

// Wait blocks until every dispatched handler has returned.
func (q *LocalQueue) Wait() {
	q.wg.Wait()
}

func (q *LocalQueue) Connected() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return !q.closed
}

func (q *LocalQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
	return nil
}
