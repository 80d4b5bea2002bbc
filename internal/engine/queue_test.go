package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// blockingStart returns a startFn whose jobs block until released, reporting
// each start on startedCh.
func blockingStart(startedCh chan uuid.UUID) (func(uuid.UUID) error, func(uuid.UUID)) {
	var mu sync.Mutex
	releaseMap := make(map[uuid.UUID]chan struct{})

	startFn := func(id uuid.UUID) error {
		release := make(chan struct{})
		mu.Lock()
		releaseMap[id] = release
		mu.Unlock()

		startedCh <- id
		<-release

		return nil
	}

	releaseFn := func(id uuid.UUID) {
		mu.Lock()
		close(releaseMap[id])
		mu.Unlock()
	}

	return startFn, releaseFn
}

func waitForStart(t *testing.T, startedCh chan uuid.UUID) uuid.UUID {
	t.Helper()

	select {
	case id := <-startedCh:
		return id
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for a job to start")
		return uuid.Nil
	}
}

func TestQueueProcessorPriorityAndBlocking(t *testing.T) {
	startedCh := make(chan uuid.UUID, 2)
	startFn, release := blockingStart(startedCh)

	stopCh := make(chan struct{})
	defer close(stopCh)

	qp := NewQueueProcessor(1, startFn, stopCh)

	idLow := uuid.New()
	idHigh := uuid.New()

	qp.Enqueue(idLow, 1)
	qp.Enqueue(idHigh, 2)

	if first := waitForStart(t, startedCh); first != idHigh {
		t.Fatalf("expected high-priority job %v first, got %v", idHigh, first)
	}

	// The single slot is taken; nothing else may start yet.
	select {
	case id := <-startedCh:
		t.Fatalf("unexpected start before slot freed: %v", id)
	case <-time.After(50 * time.Millisecond):
	}

	release(idHigh)

	if next := waitForStart(t, startedCh); next != idLow {
		t.Fatalf("expected low-priority job %v next, got %v", idLow, next)
	}

	release(idLow)
}

func TestQueueProcessorMultipleConcurrent(t *testing.T) {
	startedCh := make(chan uuid.UUID, 3)
	startFn, release := blockingStart(startedCh)

	stopCh := make(chan struct{})
	defer close(stopCh)

	qp := NewQueueProcessor(2, startFn, stopCh)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		qp.Enqueue(id, i+1)
	}

	first := waitForStart(t, startedCh)
	second := waitForStart(t, startedCh)

	highPair := map[uuid.UUID]bool{ids[1]: true, ids[2]: true}
	if !highPair[first] || !highPair[second] {
		t.Errorf("expected the two highest priorities first, got %v and %v", first, second)
	}

	select {
	case id := <-startedCh:
		t.Fatalf("unexpected third start before a slot freed: %v", id)
	case <-time.After(50 * time.Millisecond):
	}

	release(first)

	if third := waitForStart(t, startedCh); third != ids[0] {
		t.Errorf("expected %v last, got %v", ids[0], third)
	}

	release(second)
	release(ids[0])
}
