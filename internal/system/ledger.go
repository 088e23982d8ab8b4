package system

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/neonronin/survivor/internal/core/event"
	coresys "github.com/neonronin/survivor/internal/core/system"
	"github.com/neonronin/survivor/internal/persist"
	"go.uber.org/zap"
)

// RunSink receives finished runs. Implementations must not block.
type RunSink interface {
	Record(rec *persist.RunRecord)
}

// LedgerSystem turns the death of the player into a RunRecord and hands it
// to the sink. Phase 5 (Persist).
type LedgerSystem struct {
	deps    *Deps
	session uuid.UUID
	sink    RunSink
	pending *persist.RunRecord
	done    bool
}

func NewLedgerSystem(deps *Deps, session uuid.UUID, sink RunSink) *LedgerSystem {
	s := &LedgerSystem{deps: deps, session: session, sink: sink}
	event.Subscribe(deps.Bus, s.onPlayerDied)
	return s
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) onPlayerDied(ev event.PlayerDied) {
	if s.done {
		return
	}
	s.done = true
	ws := s.deps.World
	p := ws.Player
	s.pending = &persist.RunRecord{
		ID:        uuid.New(),
		SessionID: s.session,
		Class:     p.Stats.Class.String(),
		Map:       ws.MapKind.String(),
		Score:     ev.Score,
		Kills:     ws.Stats.Kills,
		Level:     ws.Stats.Level,
		Wave:      ws.Stats.Wave,
		Duration:  time.Duration(ws.Stats.Elapsed * float64(time.Millisecond)),
		Upgrades:  maps.Clone(p.Upgrades),
		EndedAt:   time.Now(),
	}
}

func (s *LedgerSystem) Update(_ time.Duration) {
	if s.pending == nil {
		return
	}
	rec := s.pending
	s.pending = nil
	if s.sink == nil {
		return
	}
	s.sink.Record(rec)
	s.deps.Log.Info("run recorded",
		zap.String("run", rec.ID.String()),
		zap.Int("score", rec.Score),
		zap.Duration("duration", rec.Duration),
	)
}

// Recorded reports whether this session's run has been captured.
func (s *LedgerSystem) Recorded() bool { return s.done && s.pending == nil }
