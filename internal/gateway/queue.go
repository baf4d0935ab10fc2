package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one pending image delivery.
type Task struct {
	Filename string
	Mac      string
}

// Sender pushes one stored image to one tag.
type Sender interface {
	Send(ctx context.Context, mac, filename string) error
}

// UploadQueue serializes deliveries to the access point. A single consumer
// drains the queue and pauses after every send so bursts of re-renders
// cannot overwhelm the ESP hardware. Failed sends are logged and dropped;
// the maintenance sweep re-renders stale content on its own cadence.
type UploadQueue struct {
	tasks  chan Task
	sender Sender
	delay  time.Duration
}

func NewUploadQueue(sender Sender, delay time.Duration) *UploadQueue {
	return &UploadQueue{
		tasks:  make(chan Task, 1024),
		sender: sender,
		delay:  delay,
	}
}

// Enqueue schedules a delivery. Tasks with a missing filename or mac are
// dropped: there is nothing the consumer could do with them.
func (q *UploadQueue) Enqueue(filename, mac string) {
	if filename == "" || mac == "" {
		log.Warn().Str("filename", filename).Str("mac", mac).
			Msg("skipped enqueue of incomplete upload task")
		return
	}
	select {
	case q.tasks <- Task{Filename: filename, Mac: mac}:
		log.Debug().Str("mac", mac).Str("filename", filename).
			Int("queued", len(q.tasks)).Msg("queued display upload")
	default:
		log.Error().Str("mac", mac).Str("filename", filename).
			Msg("upload queue full, dropping task")
	}
}

// Len reports the number of pending tasks.
func (q *UploadQueue) Len() int {
	return len(q.tasks)
}

// Run consumes tasks until the context is canceled. Intended to run as the
// queue's single goroutine; concurrent Run calls would break the rate limit.
func (q *UploadQueue) Run(ctx context.Context) {
	log.Info().Dur("delay", q.delay).Msg("upload queue started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending", len(q.tasks)).Msg("upload queue stopped")
			return
		case task := <-q.tasks:
			if err := q.sender.Send(ctx, task.Mac, task.Filename); err != nil {
				log.Error().Err(err).Str("mac", task.Mac).Str("filename", task.Filename).
					Msg("display upload failed")
			}
			if q.delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(q.delay):
				}
			}
		}
	}
}
