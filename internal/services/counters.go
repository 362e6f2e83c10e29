package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	counterBatchSize     = 50
	counterFlushInterval = 500 * time.Millisecond
	counterUpdateTimeout = 5 * time.Second
)

// CommentCounter recomputes the denormalized comment counter of a list.
type CommentCounter interface {
	RecountComments(ctx context.Context, listID uint) error
}

// CounterService refreshes list comment counters in the background. Requests
// for the same list are collapsed while one is still queued.
type CounterService struct {
	counter CommentCounter
	log     *zap.Logger

	queue   chan uint
	pending map[uint]bool
	mu      sync.Mutex

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewCounterService(counter CommentCounter, queueSize int, log *zap.Logger) *CounterService {
	if queueSize <= 0 {
		queueSize = 1000
	}
	s := &CounterService{
		counter: counter,
		log:     log,
		queue:   make(chan uint, queueSize),
		pending: make(map[uint]bool),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

// ScheduleUpdate never blocks. When the queue is full the request is dropped.
func (s *CounterService) ScheduleUpdate(listID uint) {
	s.mu.Lock()
	if s.pending[listID] {
		s.mu.Unlock()
		return
	}
	s.pending[listID] = true
	s.mu.Unlock()

	select {
	case s.queue <- listID:
	default:
		s.mu.Lock()
		delete(s.pending, listID)
		s.mu.Unlock()
		s.log.Warn("comment counter queue full, skipping", zap.Uint("list_id", listID))
	}
}

// Stop flushes whatever is queued and waits for the worker to exit.
func (s *CounterService) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *CounterService) worker() {
	defer close(s.done)

	batch := make([]uint, 0, counterBatchSize)
	ticker := time.NewTicker(counterFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case listID := <-s.queue:
			batch = append(batch, listID)
			if len(batch) >= counterBatchSize {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-s.stop:
			for {
				select {
				case listID := <-s.queue:
					batch = append(batch, listID)
				default:
					s.processBatch(batch)
					return
				}
			}
		}
	}
}

func (s *CounterService) processBatch(listIDs []uint) {
	for _, listID := range listIDs {
		s.mu.Lock()
		delete(s.pending, listID)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), counterUpdateTimeout)
		if err := s.counter.RecountComments(ctx, listID); err != nil {
			s.log.Error("recount comments failed", zap.Uint("list_id", listID), zap.Error(err))
		}
		cancel()
	}
}
