package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r *recorder) Phase() Phase { return r.phase }
func (r *recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhaseStable(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"cleanup", PhaseCleanup, &log})
	r.Register(&recorder{"move", PhaseUpdate, &log})
	r.Register(&recorder{"input", PhaseInput, &log})
	r.Register(&recorder{"combat", PhaseUpdate, &log})
	r.Register(&recorder{"snapshot", PhaseOutput, &log})

	r.Tick(16 * time.Millisecond)

	assert.Equal(t, []string{"input", "move", "combat", "snapshot", "cleanup"}, log)
	assert.Equal(t, 5, r.Len())
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"move", PhaseUpdate, &log})
	r.Register(&recorder{"input", PhaseInput, &log})

	r.TickPhase(PhaseInput, time.Millisecond)

	assert.Equal(t, []string{"input"}, log)
	assert.Equal(t, "input", PhaseInput.String())
}

type sleeper struct {
	phase Phase
	clock *time.Time
	cost  time.Duration
}

func (s *sleeper) Phase() Phase { return s.phase }
func (s *sleeper) Update(time.Duration) {
	*s.clock = s.clock.Add(s.cost)
}

func TestRunnerRecordsPhaseTimes(t *testing.T) {
	clock := time.Unix(0, 0)
	r := NewRunner()
	r.now = func() time.Time { return clock }
	r.Register(&sleeper{PhaseUpdate, &clock, 3 * time.Millisecond})
	r.Register(&sleeper{PhaseUpdate, &clock, 2 * time.Millisecond})
	r.Register(&sleeper{PhaseOutput, &clock, time.Millisecond})

	r.Tick(16 * time.Millisecond)

	times := r.LastTick()
	assert.Equal(t, 5*time.Millisecond, times[PhaseUpdate])
	assert.Equal(t, time.Millisecond, times[PhaseOutput])
	assert.Equal(t, 6*time.Millisecond, times.Total())
	phase, took := times.Slowest()
	assert.Equal(t, PhaseUpdate, phase)
	assert.Equal(t, 5*time.Millisecond, took)

	r.TickPhase(PhaseOutput, time.Millisecond)
	assert.Equal(t, times, r.LastTick(), "a single phase leaves the tick timings alone")
}
