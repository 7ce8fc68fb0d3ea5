package tasks

import (
	"sync/atomic"

	"ticksched/internal/config"
	"ticksched/internal/logging"
	"ticksched/internal/sched"
)

// Reloader hands configs from a watcher goroutine to the scheduling
// goroutine. Only the newest pending config is applied.
type Reloader struct {
	sched.TriggeredTask

	pending  atomic.Pointer[config.Config]
	appliers []ConfigApplier
	applied  atomic.Uint64
	log      logging.Logger
}

func NewReloader(log logging.Logger, appliers ...ConfigApplier) *Reloader {
	return &Reloader{
		appliers: appliers,
		log:      log.With(logging.String("task", "reloader")),
	}
}

func (r *Reloader) Name() string { return "reloader" }

// Offer queues cfg for the next pass. Safe from any goroutine.
func (r *Reloader) Offer(cfg config.Config) {
	r.pending.Store(&cfg)
	r.SetRunnable()
}

func (r *Reloader) Run(_ sched.Tick) {
	r.ResetRunnable()

	cfg := r.pending.Swap(nil)
	if cfg == nil {
		return
	}

	for _, a := range r.appliers {
		a.ApplyConfig(*cfg)
	}
	n := r.applied.Add(1)

	r.log.Info("config applied",
		logging.Uint64("generation", n),
		logging.Int("appliers", len(r.appliers)),
	)
}

// Applied counts configs applied so far.
func (r *Reloader) Applied() uint64 { return r.applied.Load() }
