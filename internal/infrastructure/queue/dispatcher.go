package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	destroyTimeout = 30 * time.Second
)

// ImageCleanup wraps an ImageHost so that Destroy runs on background workers.
// Uploads stay synchronous. Removals of the same image land on the same worker.
type ImageCleanup struct {
	host    ports.ImageHost
	workers []chan string
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewImageCleanup creates an ImageCleanup with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewImageCleanup(numWorkers int, host ports.ImageHost, log zerolog.Logger) *ImageCleanup {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &ImageCleanup{
		host:    host,
		workers: make([]chan string, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Shutdown has drained their queue.
func (d *ImageCleanup) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(context.WithoutCancel(ctx), i, ch)
	}
}

// Shutdown stops accepting work and waits for queued removals to finish or ctx to end.
func (d *ImageCleanup) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ImageCleanup) Upload(ctx context.Context, img ports.ImageUpload) (*domain.ProfileImage, error) {
	return d.host.Upload(ctx, img)
}

// Destroy queues the removal and returns immediately. When the queue is full
// or shut down the removal runs inline.
func (d *ImageCleanup) Destroy(ctx context.Context, externalID string) error {
	d.mu.RLock()
	if !d.closed {
		select {
		case d.workers[d.shardIndex(externalID)] <- externalID:
			d.mu.RUnlock()
			return nil
		default:
		}
	}
	d.mu.RUnlock()

	d.log.Warn().Str("external_id", externalID).Msg("image cleanup queue unavailable, destroying inline")
	return d.host.Destroy(ctx, externalID)
}

// shardIndex maps an external id deterministically to a worker index.
func (d *ImageCleanup) shardIndex(externalID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(externalID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *ImageCleanup) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	for externalID := range ch {
		jobCtx, cancel := context.WithTimeout(ctx, destroyTimeout)
		if err := d.host.Destroy(jobCtx, externalID); err != nil {
			d.log.Error().Err(err).
				Str("external_id", externalID).
				Int("worker_id", id).
				Msg("profile image removal failed")
		}
		cancel()
	}
}
