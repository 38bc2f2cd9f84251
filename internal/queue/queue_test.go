package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id     string
	target int
}

func TestQueue_FIFO(t *testing.T) {
	q := New[item]()

	q.Enqueue(item{id: "a"}, false, nil)
	q.Enqueue(item{id: "b"}, false, nil)
	q.Enqueue(item{id: "c"}, false, nil)

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.id)
	}
}

func TestQueue_FrontInsertion(t *testing.T) {
	q := New[item]()

	q.Enqueue(item{id: "slow1"}, false, nil)
	q.Enqueue(item{id: "slow2"}, false, nil)
	q.Enqueue(item{id: "cached1"}, true, nil)
	q.Enqueue(item{id: "cached2"}, true, nil)

	// Head inserts come out before earlier tail inserts; most recent head
	// insert first, FIFO preserved among the tail inserts.
	var order []string
	for q.Len() > 0 {
		got, ok := q.Dequeue()
		require.True(t, ok)
		order = append(order, got.id)
	}
	assert.Equal(t, []string{"cached2", "cached1", "slow1", "slow2"}, order)
}

func TestQueue_Coalescing(t *testing.T) {
	q := New[item]()

	q.Enqueue(item{id: "a", target: 1}, false, nil)
	q.Enqueue(item{id: "b", target: 2}, false, nil)

	// Newer request for target 1 displaces the older pending one.
	q.Enqueue(item{id: "c", target: 1}, false, func(it item) bool { return it.target == 1 })

	require.Equal(t, 2, q.Len())

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "b", got.id)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "c", got.id)
}

func TestQueue_RemoveAll(t *testing.T) {
	q := New[item]()

	q.Enqueue(item{id: "a", target: 1}, false, nil)
	q.Enqueue(item{id: "b", target: 2}, false, nil)
	q.Enqueue(item{id: "c", target: 1}, false, nil)

	removed := q.RemoveAll(func(it item) bool { return it.target == 1 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, q.Len())

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "b", got.id)
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := New[item]()

	got := make(chan item, 1)
	go func() {
		it, ok := q.Dequeue()
		if ok {
			got <- it
		}
	}()

	// Give the dequeuer a moment to block.
	time.Sleep(20 * time.Millisecond)
	q.Enqueue(item{id: "a"}, false, nil)

	select {
	case it := <-got:
		assert.Equal(t, "a", it.id)
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue did not wake up")
	}
}

func TestQueue_CloseUnblocksDequeuers(t *testing.T) {
	q := New[item]()

	var wg sync.WaitGroup
	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Dequeue()
			results <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()
	wg.Wait()
	close(results)

	for ok := range results {
		assert.False(t, ok)
	}
}

func TestQueue_CloseDropsPendingAndIgnoresEnqueue(t *testing.T) {
	q := New[item]()

	q.Enqueue(item{id: "a"}, false, nil)
	q.Close()

	_, ok := q.Dequeue()
	assert.False(t, ok)

	q.Enqueue(item{id: "b"}, false, nil)
	assert.Equal(t, 0, q.Len())

	// Double close is fine.
	q.Close()
}
