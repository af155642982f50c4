package schedule

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// --- common interface ---

type dispatcher[T Partitionable] interface {
	channelOf(msg T) chan T
}

// --- single queue ---

type singleQueue[T Partitionable] struct {
	ch chan T
}

func (q singleQueue[T]) channelOf(_ T) chan T {
	return q.ch
}

// --- partitioned queue ---

type partitionedQueue[T Partitionable] struct {
	chs []chan T
}

func (pq partitionedQueue[T]) channelOf(msg T) chan T {
	return pq.chs[indexByHash(msg, len(pq.chs))]
}

// newDispatcher starts cfg.NumWorkers goroutines, each draining its own
// channel until ctx is done. Messages sharing a partition key always land
// on the same worker.
func newDispatcher[T Partitionable](
	ctx context.Context,
	cfg Config,
	handleFn func(context.Context, T),
) dispatcher[T] {
	channels := make([]chan T, cfg.NumWorkers)
	ready := sync.WaitGroup{}
	for i := range channels {
		ready.Add(1)
		ch := make(chan T, cfg.BufferSize)
		go func(ch chan T) {
			ready.Done()
			for {
				select {
				case msg := <-ch:
					handleFn(ctx, msg)
				case <-ctx.Done():
					return
				}
			}
		}(ch)
		channels[i] = ch
	}
	ready.Wait()

	if len(channels) == 1 {
		return singleQueue[T]{ch: channels[0]}
	}
	return partitionedQueue[T]{chs: channels}
}

func hash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func indexByHash(msg Partitionable, numChs int) int {
	switch numChs {
	case 0:
		panic("number of channels cannot be 0")
	case 1:
		return 0
	default:
		return int(hash(msg.PartitionKey()) % uint64(numChs))
	}
}
