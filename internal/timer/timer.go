// Package timer implements the focus/break cycle of the pomodoro timer.
//
// The timer never reads the clock; callers advance it with Tick.
package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// Phase is the current segment of a cycle.
type Phase int

const (
	PhaseFocus Phase = iota
	PhaseBreak
)

func (p Phase) String() string {
	if p == PhaseBreak {
		return "Break"
	}
	return "Focus"
}

// State is the run state of the timer.
type State int

const (
	Idle State = iota
	Running
	Paused
)

// Event is emitted by Tick when a phase ends.
type Event interface{ isEvent() }

// FocusCompleted is emitted when a focus phase runs out.
type FocusCompleted struct {
	Round   int
	Minutes int
}

// BreakCompleted is emitted when a break other than the last one ends.
type BreakCompleted struct {
	Round int
}

// CycleCompleted is emitted after the final break of the last round.
type CycleCompleted struct {
	Rounds int
}

func (FocusCompleted) isEvent() {}
func (BreakCompleted) isEvent() {}
func (CycleCompleted) isEvent() {}

// Built-in presets.
var (
	DeepWork = model.Preset{Key: "45/15", Name: "Deep Work", FocusMinutes: 45, BreakMinutes: 15, Rounds: 3}
	Pomodoro = model.Preset{Key: "25/5", Name: "Pomodoro", FocusMinutes: 25, BreakMinutes: 5, Rounds: 4}
)

// Presets returns the built-in presets plus a custom one.
func Presets(customFocus, customBreak int) []model.Preset {
	return []model.Preset{
		DeepWork,
		Pomodoro,
		{Key: "custom", Name: "Custom", FocusMinutes: customFocus, BreakMinutes: customBreak, Rounds: 3},
	}
}

// FindPreset looks a preset up by key ("45/15", "25/5", "custom").
func FindPreset(key string, customFocus, customBreak int) (model.Preset, error) {
	var keys []string
	for _, p := range Presets(customFocus, customBreak) {
		if p.Key == key {
			return p, nil
		}
		keys = append(keys, p.Key)
	}
	return model.Preset{}, fmt.Errorf("unknown preset %q (available: %s)", key, strings.Join(keys, ", "))
}

// Timer tracks progress through a preset's rounds.
type Timer struct {
	preset    model.Preset
	state     State
	phase     Phase
	round     int
	remaining time.Duration
}

// New returns an idle timer at the start of round 1.
func New(preset model.Preset) *Timer {
	if preset.Rounds < 1 {
		preset.Rounds = 1
	}
	t := &Timer{preset: preset}
	t.Reset()
	return t
}

// Preset returns the timer's configuration.
func (t *Timer) Preset() model.Preset { return t.preset }

// State returns the run state.
func (t *Timer) State() State { return t.state }

// Phase returns the current phase.
func (t *Timer) Phase() Phase { return t.phase }

// Round returns the 1-based round number.
func (t *Timer) Round() int { return t.round }

// Remaining returns the time left in the current phase.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Start begins or resumes counting down.
func (t *Timer) Start() { t.state = Running }

// Pause stops counting down without losing progress.
func (t *Timer) Pause() {
	if t.state == Running {
		t.state = Paused
	}
}

// Resume continues a paused timer.
func (t *Timer) Resume() {
	if t.state == Paused {
		t.state = Running
	}
}

// Toggle starts a stopped timer or pauses a running one.
func (t *Timer) Toggle() {
	if t.state == Running {
		t.Pause()
		return
	}
	t.Start()
}

// Reset returns to an idle focus phase in round 1.
func (t *Timer) Reset() {
	t.state = Idle
	t.phase = PhaseFocus
	t.round = 1
	t.remaining = t.phaseLength(PhaseFocus)
}

// Fraction returns how much of the current phase has elapsed, in [0, 1].
func (t *Timer) Fraction() float64 {
	total := t.phaseLength(t.phase)
	if total <= 0 {
		return 1
	}
	return 1 - float64(t.remaining)/float64(total)
}

// Tick advances a running timer by elapsed and returns the events of any
// phases that ended. Time left over after a phase ends carries into the next.
func (t *Timer) Tick(elapsed time.Duration) []Event {
	if t.state != Running || elapsed <= 0 {
		return nil
	}
	var events []Event
	for elapsed > 0 && t.state == Running {
		if elapsed < t.remaining {
			t.remaining -= elapsed
			break
		}
		elapsed -= t.remaining
		events = append(events, t.advance())
	}
	return events
}

func (t *Timer) advance() Event {
	if t.phase == PhaseFocus {
		ev := FocusCompleted{Round: t.round, Minutes: t.preset.FocusMinutes}
		t.phase = PhaseBreak
		t.remaining = t.phaseLength(PhaseBreak)
		return ev
	}
	if t.round >= t.preset.Rounds {
		t.Reset()
		return CycleCompleted{Rounds: t.preset.Rounds}
	}
	ev := BreakCompleted{Round: t.round}
	t.round++
	t.phase = PhaseFocus
	t.remaining = t.phaseLength(PhaseFocus)
	return ev
}

func (t *Timer) phaseLength(p Phase) time.Duration {
	minutes := t.preset.FocusMinutes
	if p == PhaseBreak {
		minutes = t.preset.BreakMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// FormatRemaining renders a duration as MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
