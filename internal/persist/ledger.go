package persist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSaver stores finished runs.
type RunSaver interface {
	Save(ctx context.Context, rec *RunRecord) error
}

// Ledger hands finished runs to a RunSaver off the tick goroutine. Record
// never blocks; when the queue is full the run is logged and dropped.
type Ledger struct {
	saver   RunSaver
	queue   chan *RunRecord
	timeout time.Duration
	log     *zap.Logger
}

func NewLedger(saver RunSaver, log *zap.Logger) *Ledger {
	return &Ledger{
		saver:   saver,
		queue:   make(chan *RunRecord, 16),
		timeout: 10 * time.Second,
		log:     log,
	}
}

func (l *Ledger) Record(rec *RunRecord) {
	select {
	case l.queue <- rec:
	default:
		l.log.Warn("run ledger full, dropping run", zap.String("run", rec.ID.String()), zap.Int("score", rec.Score))
	}
}

// Run saves queued runs until ctx is done, then flushes what is left.
func (l *Ledger) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-l.queue:
			l.save(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-l.queue:
					l.save(rec)
				default:
					return nil
				}
			}
		}
	}
}

func (l *Ledger) save(rec *RunRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := l.saver.Save(ctx, rec); err != nil {
		l.log.Error("save run", zap.String("run", rec.ID.String()), zap.Error(err))
		return
	}
	l.log.Info("run saved",
		zap.String("run", rec.ID.String()),
		zap.String("class", rec.Class),
		zap.Int("score", rec.Score),
	)
}
