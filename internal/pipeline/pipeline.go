package pipeline

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"picpurge/internal/database"
	"picpurge/internal/extract"
	"picpurge/internal/fileops"
	"picpurge/internal/logging"
	"picpurge/internal/metrics"
	"picpurge/internal/thumbs"
	"picpurge/internal/workers"
)

const (
	// DefaultBatchSize is the record count that forces a buffer flush.
	DefaultBatchSize = 500
	// DefaultFlushInterval is the longest a buffered record waits
	// before being written out.
	DefaultFlushInterval = 100 * time.Millisecond
	// DefaultExtractTimeout bounds one file's extraction so a hung
	// decode cannot stall a worker slot forever.
	DefaultExtractTimeout = 60 * time.Second
	// DefaultMinFileSize is the floor below which files are recycled
	// without extraction.
	DefaultMinFileSize = 10 * 1024

	// maxConcurrency caps a requested worker count; past this the
	// single sqlite writer is the bottleneck, not decode parallelism.
	maxConcurrency = 64
)

// Config controls one pipeline run. Zero fields take the defaults
// above; Concurrency defaults to the workers package sizing.
type Config struct {
	Concurrency    int
	BatchSize      int
	FlushInterval  time.Duration
	ExtractTimeout time.Duration
	MinFileSize    int64
	RecycleDir     string

	// OnFile, when set, is called after each input path finishes
	// (extracted, recycled, or errored). Used for progress output.
	OnFile func(path string, err error)
}

// Summary reports what one run did.
type Summary struct {
	Processed     int64
	Errored       int64
	SmallRecycled int64
}

// Pipeline fans file paths out to a fixed pool of extraction workers
// and batches their records into the store.
type Pipeline struct {
	cfg    Config
	store  *database.Store
	thumbs *thumbs.Store

	processed     atomic.Int64
	errored       atomic.Int64
	smallRecycled atomic.Int64
}

func New(store *database.Store, thumbStore *thumbs.Store, cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = workers.Default()
	}
	cfg.Concurrency = workers.Clamp(cfg.Concurrency, maxConcurrency)
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = DefaultExtractTimeout
	}
	if cfg.MinFileSize <= 0 {
		cfg.MinFileSize = DefaultMinFileSize
	}
	return &Pipeline{cfg: cfg, store: store, thumbs: thumbStore}
}

// Run consumes the path stream until it is exhausted or ctx is
// cancelled, then drains the insert buffer synchronously before
// returning. The unbuffered job channel plus the fixed worker count
// give strict one-in-one-out admission: at most Concurrency files are
// in flight at any moment.
func (p *Pipeline) Run(ctx context.Context, paths <-chan string) (Summary, error) {
	logging.Info("starting pipeline with %d workers (batch %d, flush %v)",
		p.cfg.Concurrency, p.cfg.BatchSize, p.cfg.FlushInterval)
	metrics.PipelineWorkers.Set(float64(p.cfg.Concurrency))
	defer metrics.PipelineWorkers.Set(0)

	buf := newInsertBuffer(p.store, p.cfg.BatchSize)

	flushDone := make(chan struct{})
	stopFlusher := make(chan struct{})
	go func() {
		defer close(flushDone)
		ticker := time.NewTicker(p.cfg.FlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				buf.flush()
			case <-stopFlusher:
				return
			}
		}
	}()

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				p.handleFile(ctx, path, buf)
			}
		}()
	}

feed:
	for {
		select {
		case path, ok := <-paths:
			if !ok {
				break feed
			}
			select {
			case jobs <- path:
			case <-ctx.Done():
				break feed
			}
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	close(stopFlusher)
	<-flushDone
	buf.flush()

	summary := Summary{
		Processed:     p.processed.Load(),
		Errored:       p.errored.Load(),
		SmallRecycled: p.smallRecycled.Load(),
	}
	logging.Info("pipeline done: %d processed, %d errored, %d small files recycled",
		summary.Processed, summary.Errored, summary.SmallRecycled)
	return summary, ctx.Err()
}

// handleFile processes one path end to end: small files go straight to
// the recycle directory, everything else is extracted under the
// per-file timeout and buffered for insert.
func (p *Pipeline) handleFile(ctx context.Context, path string, buf *insertBuffer) {
	var err error
	defer func() {
		if p.cfg.OnFile != nil {
			p.cfg.OnFile(path, err)
		}
	}()

	info, statErr := os.Stat(path)
	if statErr != nil {
		err = extract.NewError(extract.KindIO, path, statErr)
		p.recordError(err)
		return
	}

	if info.Size() < p.cfg.MinFileSize && p.cfg.RecycleDir != "" {
		if _, recErr := fileops.Recycle(path, p.cfg.RecycleDir); recErr != nil {
			err = extract.NewError(extract.KindRecycle, path, recErr)
			p.recordError(err)
			return
		}
		p.smallRecycled.Add(1)
		metrics.PipelineSmallFilesRecycled.Inc()
		logging.Debug("recycled small file %s (%d bytes)", path, info.Size())
		return
	}

	res, err := p.extractWithTimeout(ctx, path)
	if err != nil {
		p.recordError(err)
		return
	}

	if len(res.Thumbnail) > 0 {
		ref := p.thumbs.Put(res.Record.ContentHash, res.Thumbnail)
		res.Record.ThumbnailRef = &ref
	}

	buf.add(res.Record)
	p.processed.Add(1)
	metrics.PipelineFilesProcessed.Inc()
}

// extractWithTimeout runs the extractor in its own goroutine so an
// expired deadline frees the worker slot. The abandoned extraction
// finishes in the background; its result is discarded.
func (p *Pipeline) extractWithTimeout(ctx context.Context, path string) (*extract.Result, error) {
	start := time.Now()

	type outcome struct {
		res *extract.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := extract.Extract(path)
		done <- outcome{res, err}
	}()

	timer := time.NewTimer(p.cfg.ExtractTimeout)
	defer timer.Stop()

	select {
	case out := <-done:
		metrics.PipelineExtractDuration.Observe(time.Since(start).Seconds())
		return out.res, out.err
	case <-timer.C:
		return nil, extract.NewError(extract.KindTimeout, path,
			context.DeadlineExceeded)
	case <-ctx.Done():
		return nil, extract.NewError(extract.KindTimeout, path, ctx.Err())
	}
}

func (p *Pipeline) recordError(err error) {
	p.errored.Add(1)
	metrics.PipelineFilesErrored.WithLabelValues(string(extract.KindOf(err))).Inc()
	logging.Warn("%v", err)
}
