// Package snowflake issues unique, time-ordered entity IDs. Every profile,
// server, channel and member row gets its primary key here, so IDs generated
// later always sort after IDs generated earlier — the property the member
// list relies on for insertion-order tie-breaks.
package snowflake

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

const (
	// epoch is January 1, 2024 00:00:00 UTC in milliseconds.
	epoch int64 = 1704067200000

	workerIDBits uint8 = 10
	sequenceBits uint8 = 12

	maxWorkerID = -1 ^ (-1 << workerIDBits)
	sequenceMax = -1 ^ (-1 << sequenceBits)

	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

var (
	ErrInvalidWorkerID     = errors.New("worker ID exceeds maximum value")
	ErrClockMovedBackwards = errors.New("clock moved backwards")
)

// Generator produces snowflake IDs for a single worker.
type Generator struct {
	mu sync.Mutex

	workerID      int64
	sequence      int64
	lastTimestamp int64
}

// NewGenerator creates a generator for the given worker ID.
func NewGenerator(workerID int64) (*Generator, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, ErrInvalidWorkerID
	}
	return &Generator{workerID: workerID}, nil
}

// NextID generates the next unique ID. IDs from one generator are strictly
// increasing.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := currentMillis()
	if timestamp < g.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & sequenceMax
		if g.sequence == 0 {
			// Sequence exhausted within this millisecond.
			for timestamp <= g.lastTimestamp {
				timestamp = currentMillis()
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTimestamp = timestamp

	id := ((timestamp - epoch) << timestampShift) |
		(g.workerID << workerIDShift) |
		g.sequence
	return id, nil
}

// Timestamp extracts the millisecond timestamp embedded in an ID.
func Timestamp(id int64) int64 {
	return (id >> timestampShift) + epoch
}

// WorkerID extracts the worker ID embedded in an ID.
func WorkerID(id int64) int64 {
	return (id >> workerIDShift) & maxWorkerID
}

// Format renders an ID the way it is stored in primary key columns.
func Format(id int64) string {
	return strconv.FormatInt(id, 10)
}

func currentMillis() int64 {
	return time.Now().UnixMilli()
}
