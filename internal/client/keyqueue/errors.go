package keyqueue

import (
	"errors"
	"fmt"
)

var (
	ErrExecutorClosed = errors.New("keyqueue: executor closed")
	ErrQueueFull      = errors.New("keyqueue: queue full")
	ErrJobPanicked    = errors.New("keyqueue: job panicked")
)

// QueueFullError reports which shard rejected the job.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("%s (shard %d, %d/%d)", ErrQueueFull, e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Unwrap() error { return ErrQueueFull }
