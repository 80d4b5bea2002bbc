package engine

import (
	"container/heap"
	"sync"

	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/logger"
)

// queueItem wraps a job ID with its priority for the heap.
type queueItem struct {
	ID       uuid.UUID
	Priority int
	index    int
}

// jobHeap implements heap.Interface as a max-heap by Priority.
type jobHeap []*queueItem

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].Priority > h[j].Priority }
func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *jobHeap) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	item.index = -1
	*h = old[:n-1]
	return item
}

// QueueProcessor starts prioritized fetch jobs up to maxConcurrent, and will
// exit its dispatchLoop when stopCh is closed.
type QueueProcessor struct {
	mu            sync.Mutex
	cond          *sync.Cond
	heap          jobHeap
	startFn       func(uuid.UUID) error
	maxConcurrent int
	activeCount   int
	stopCh        <-chan struct{}
}

// NewQueueProcessor creates and starts the processor loop. When stopCh is
// closed, dispatchLoop will wake up and return.
func NewQueueProcessor(maxConcurrent int, startFn func(uuid.UUID) error, stopCh <-chan struct{}) *QueueProcessor {
	qp := &QueueProcessor{
		heap:          make(jobHeap, 0),
		startFn:       startFn,
		maxConcurrent: maxConcurrent,
		stopCh:        stopCh,
	}
	qp.cond = sync.NewCond(&qp.mu)

	go qp.dispatchLoop()

	// Also watch stopCh so we can wake any waiting cond.Wait()
	go func() {
		<-stopCh
		qp.cond.L.Lock()
		qp.cond.Broadcast()
		qp.cond.L.Unlock()
	}()

	return qp
}

// Enqueue adds a job ID with its priority into the queue.
func (q *QueueProcessor) Enqueue(id uuid.UUID, priority int) {
	q.mu.Lock()
	heap.Push(&q.heap, &queueItem{ID: id, Priority: priority})
	logger.Infof("Enqueued fetch %s (priority %d)", id, priority)
	q.cond.Signal()
	q.mu.Unlock()
}

// dispatchLoop pops items when slots free and starts workers.
// It will return as soon as stopCh is closed.
func (q *QueueProcessor) dispatchLoop() {
	for {
		q.mu.Lock()
		for q.activeCount >= q.maxConcurrent || len(q.heap) == 0 {
			q.cond.Wait()

			select {
			case <-q.stopCh:
				q.mu.Unlock()
				return
			default:
			}
		}

		select {
		case <-q.stopCh:
			q.mu.Unlock()
			return
		default:
		}

		item := heap.Pop(&q.heap).(*queueItem)
		q.activeCount++
		q.mu.Unlock()

		go func(id uuid.UUID) {
			defer func() {
				q.mu.Lock()
				q.activeCount--
				q.cond.Signal()
				q.mu.Unlock()
			}()

			logger.Infof("Starting fetch %s", id)
			if err := q.startFn(id); err != nil {
				logger.Errorf("Fetch %s failed to start: %v", id, err)
			}
		}(item.ID)
	}
}
