package alarm

import (
	"context"
	"log/slog"
	"time"

	"github.com/meltforce/fithome/internal/clock"
)

// Cue schedules a tone Delay after the alarm is rung.
type Cue struct {
	Delay time.Duration
	Tone  Tone
}

// DefaultCues is the chirp followed by two beeps, 600ms apart.
var DefaultCues = []Cue{
	{Delay: 0, Tone: Chirp},
	{Delay: 600 * time.Millisecond, Tone: Beep},
	{Delay: 1200 * time.Millisecond, Tone: Beep},
}

// Sequence rings a fixed series of tones on a Player.
type Sequence struct {
	clock   clock.Clock
	player  Player
	cues    []Cue
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithClock sets the scheduler used for cue delays.
func WithClock(c clock.Clock) Option {
	return func(s *Sequence) { s.clock = c }
}

// WithCues replaces the default cue list.
func WithCues(cues []Cue) Option {
	return func(s *Sequence) { s.cues = cues }
}

// WithTimeout bounds a single Play call.
func WithTimeout(d time.Duration) Option {
	return func(s *Sequence) { s.timeout = d }
}

// NewSequence creates a Sequence playing DefaultCues on p.
func NewSequence(p Player, log *slog.Logger, opts ...Option) *Sequence {
	s := &Sequence{
		clock:   clock.Real(),
		player:  p,
		cues:    DefaultCues,
		timeout: 5 * time.Second,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ring schedules every cue and returns immediately. Scheduled tones are not
// cancelled by later timer actions.
func (s *Sequence) Ring() {
	for _, c := range s.cues {
		tone := c.Tone
		s.clock.AfterFunc(c.Delay, func() { s.play(tone) })
	}
}

func (s *Sequence) play(t Tone) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.player.Play(ctx, t); err != nil {
		s.log.Debug("alarm tone not played", "tone", t.Name, "error", err)
	}
}
