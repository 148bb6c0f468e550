package pipeline

import (
	"sync"
	"time"

	"picpurge/internal/database"
	"picpurge/internal/logging"
	"picpurge/internal/metrics"
)

// insertBuffer accumulates extracted records and writes them to the
// store in batches, amortizing transaction overhead against the
// single-writer database. A failed flush drops its batch: the store
// rolls the transaction back, the loss is logged, and the run goes on.
type insertBuffer struct {
	store *database.Store
	limit int

	mu   sync.Mutex
	recs []database.ImageRecord
}

func newInsertBuffer(store *database.Store, limit int) *insertBuffer {
	return &insertBuffer{
		store: store,
		limit: limit,
		recs:  make([]database.ImageRecord, 0, limit),
	}
}

// add appends one record, flushing synchronously when the batch limit
// is reached.
func (b *insertBuffer) add(rec database.ImageRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.recs = append(b.recs, rec)
	if len(b.recs) >= b.limit {
		b.flushLocked()
	}
}

// flush writes out whatever the buffer holds.
func (b *insertBuffer) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *insertBuffer) flushLocked() {
	if len(b.recs) == 0 {
		return
	}

	start := time.Now()
	count := len(b.recs)
	err := b.store.BatchInsert(b.recs)

	metrics.BatchFlushSize.Observe(float64(count))
	metrics.BatchFlushDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BatchFlushesTotal.WithLabelValues("error").Inc()
		logging.Error("batch flush failed, %d records lost this run: %v", count, err)
	} else {
		metrics.BatchFlushesTotal.WithLabelValues("ok").Inc()
		logging.Debug("flushed %d records in %v", count, time.Since(start))
	}

	// The batch is consumed either way; failed rows are not retried.
	b.recs = b.recs[:0]
}
