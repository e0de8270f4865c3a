package pipeline

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/purposeful/coach/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker drains queued sessions with a fixed pool of goroutines. The
// queue is bounded; Enqueue never blocks a request handler.
type Worker struct {
	svc     Service
	log     *zap.Logger
	queue   chan snowflake.ID
	workers int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type WorkerParams struct {
	fx.In

	LC      fx.Lifecycle
	Log     *zap.Logger
	Config  config.Config
	Service Service
}

func NewWorker(p WorkerParams) *Worker {
	workers := p.Config.PipelineWorkers
	if workers <= 0 {
		workers = 2
	}
	size := p.Config.PipelineQueueSize
	if size <= 0 {
		size = 64
	}

	w := &Worker{
		svc:     p.Service,
		log:     p.Log.Named("pipeline.worker"),
		queue:   make(chan snowflake.ID, size),
		workers: workers,
	}

	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.start()
			return nil
		},
		OnStop: func(context.Context) error {
			w.stop()
			return nil
		},
	})
	return w
}

func (w *Worker) start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	w.log.Info("pipeline workers started",
		zap.Int("workers", w.workers),
		zap.Int("queue_size", cap(w.queue)),
	)
}

func (w *Worker) stop() {
	w.cancel()
	close(w.queue)
	w.wg.Wait()
	w.log.Info("pipeline workers stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for id := range w.queue {
		queueDepth.Dec()
		res := w.svc.Process(ctx, id)
		if !res.Success {
			w.log.Warn("queued run did not succeed",
				zap.String("session_id", res.SessionID),
				zap.String("error", res.Error),
			)
		}
	}
}

// Enqueue hands a session to the pool. Returns false when the queue is
// full; the caller decides whether to surface backpressure.
func (w *Worker) Enqueue(id snowflake.ID) bool {
	select {
	case w.queue <- id:
		queueDepth.Inc()
		return true
	default:
		enqueueDropped.Inc()
		w.log.Warn("pipeline queue full", zap.String("session_id", id.String()))
		return false
	}
}
