package queue

import (
	"testing"

	"github.com/mjansche/wfst-go/fst"
)

func drain(q Queue) []fst.StateId {
	var order []fst.StateId
	for !q.Empty() {
		order = append(order, q.Head())
		q.Dequeue()
	}
	return order
}

func TestFIFOOrder(t *testing.T) {
	q := NewFIFO()
	q.Enqueue(3)
	q.Enqueue(1)
	q.Enqueue(2)
	got := drain(q)
	want := []fst.StateId{3, 1, 2}
	if !equalIds(got, want) {
		t.Errorf("FIFO order = %v, want %v", got, want)
	}
}

func TestLIFOOrder(t *testing.T) {
	q := NewLIFO()
	q.Enqueue(3)
	q.Enqueue(1)
	q.Enqueue(2)
	got := drain(q)
	want := []fst.StateId{2, 1, 3}
	if !equalIds(got, want) {
		t.Errorf("LIFO order = %v, want %v", got, want)
	}
}

func TestStateOrderSortsAscending(t *testing.T) {
	q := NewStateOrder()
	q.Enqueue(3)
	q.Enqueue(1)
	q.Enqueue(2)
	got := drain(q)
	want := []fst.StateId{1, 2, 3}
	if !equalIds(got, want) {
		t.Errorf("StateOrder order = %v, want %v", got, want)
	}
}

func TestTopOrderFollowsSuppliedOrder(t *testing.T) {
	q := NewTopOrder([]fst.StateId{5, 1, 9})
	q.Enqueue(9)
	q.Enqueue(5)
	q.Enqueue(1)
	got := drain(q)
	want := []fst.StateId{5, 1, 9}
	if !equalIds(got, want) {
		t.Errorf("TopOrder order = %v, want %v", got, want)
	}
}

func TestShortestFirstReactsToUpdate(t *testing.T) {
	dist := map[fst.StateId]int{0: 10, 1: 5, 2: 20}
	less := func(a, b fst.StateId) bool { return dist[a] < dist[b] }
	q := NewShortestFirst(less)
	q.Enqueue(0)
	q.Enqueue(1)
	q.Enqueue(2)

	// Improve state 2's distance below state 1's and re-heapify.
	dist[2] = 1
	q.Update(2)

	if got := q.Head(); got != 2 {
		t.Errorf("expected state 2 to surface first after Update, got %d", got)
	}
}

func TestTrivialHoldsOneState(t *testing.T) {
	q := NewTrivial()
	if !q.Empty() {
		t.Fatalf("expected fresh Trivial queue to be empty")
	}
	q.Enqueue(7)
	if q.Empty() || q.Head() != 7 {
		t.Errorf("expected Trivial queue to hold state 7")
	}
	q.Dequeue()
	if !q.Empty() {
		t.Errorf("expected Trivial queue to be empty after Dequeue")
	}
}

func equalIds(a, b []fst.StateId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
