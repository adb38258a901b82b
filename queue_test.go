package marquee

import (
	"sync"
	"testing"
)

func TestQueueSwapPreservesOrder(t *testing.T) {
	q := newUpdateQueue()
	for i := 1; i <= 3; i++ {
		q.enqueue(destroyNode{id: NodeID(i)})
	}
	if q.len() != 3 {
		t.Fatalf("len = %d, want 3", q.len())
	}
	batch := q.swap()
	if len(batch) != 3 {
		t.Fatalf("batch len = %d, want 3", len(batch))
	}
	for i, u := range batch {
		if got := u.(destroyNode).id; got != NodeID(i+1) {
			t.Errorf("batch[%d] = %v, want %d", i, got, i+1)
		}
	}
	if q.len() != 0 {
		t.Errorf("len after swap = %d, want 0", q.len())
	}
}

func TestQueueRecycleReusesBuffer(t *testing.T) {
	q := newUpdateQueue()
	q.enqueue(destroyNode{id: 1})
	first := q.swap()
	q.recycle(first)
	q.enqueue(destroyNode{id: 2})
	second := q.swap()
	if len(second) != 1 || second[0].(destroyNode).id != 2 {
		t.Fatalf("second batch = %v", second)
	}
	if first[0] != nil {
		t.Error("recycle did not clear the applied batch")
	}
}

func TestQueueSwapWithoutRecycle(t *testing.T) {
	q := newUpdateQueue()
	q.swap()
	q.swap()
	if !q.enqueue(destroyNode{id: 1}) {
		t.Fatal("enqueue failed")
	}
	if got := len(q.swap()); got != 1 {
		t.Errorf("batch len = %d, want 1", got)
	}
}

func TestQueueCloseDropsPending(t *testing.T) {
	q := newUpdateQueue()
	q.enqueue(destroyNode{id: 1})
	q.close()
	if q.len() != 0 {
		t.Errorf("len after close = %d, want 0", q.len())
	}
	if q.enqueue(destroyNode{id: 2}) {
		t.Error("enqueue succeeded after close")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, each = 8, 200
	q := newUpdateQueue()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.enqueue(destroyNode{id: NodeID(p*each + i)})
			}
		}(p)
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		batch := q.swap()
		total += len(batch)
		q.recycle(batch)
		select {
		case <-done:
			total += len(q.swap())
			if total != producers*each {
				t.Fatalf("drained %d records, want %d", total, producers*each)
			}
			return
		default:
		}
	}
}
