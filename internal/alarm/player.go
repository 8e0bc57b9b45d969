package alarm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Player outputs a tone. Implementations may block for the tone's duration.
type Player interface {
	Play(ctx context.Context, t Tone) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, t Tone) error

// Play implements Player.
func (f PlayerFunc) Play(ctx context.Context, t Tone) error { return f(ctx, t) }

// Silent discards every tone.
type Silent struct{}

// Play implements Player.
func (Silent) Play(context.Context, Tone) error { return nil }

// CommandPlayer pipes a synthesized WAV into an external audio program.
type CommandPlayer struct {
	Name       string
	Args       []string
	SampleRate int
}

// Play implements Player.
func (p CommandPlayer) Play(ctx context.Context, t Tone) error {
	wav, err := WAV(t, p.SampleRate)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, p.Name, p.Args...)
	cmd.Stdin = bytes.NewReader(wav)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (stderr: %s)", p.Name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// knownPlayers are tried in order by Detect. Each reads a WAV from stdin.
var knownPlayers = []CommandPlayer{
	{Name: "aplay", Args: []string{"-q", "-"}},
	{Name: "paplay"},
	{Name: "pw-play", Args: []string{"-"}},
	{Name: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-i", "-"}},
}

// Detect returns the first known audio program found on PATH, or Silent.
func Detect() Player {
	return detect(exec.LookPath)
}

func detect(lookPath func(string) (string, error)) Player {
	for _, p := range knownPlayers {
		if path, err := lookPath(p.Name); err == nil {
			p.Name = path
			return p
		}
	}
	return Silent{}
}

// Resolve turns a configuration value into a Player: "none" is silent,
// "auto" (or empty) detects a program, anything else is a command line
// that reads a WAV on stdin.
func Resolve(setting string) Player {
	switch strings.TrimSpace(setting) {
	case "none", "off":
		return Silent{}
	case "", "auto":
		return Detect()
	}
	fields := strings.Fields(setting)
	return CommandPlayer{Name: fields[0], Args: fields[1:]}
}

// Multi plays a tone on every player in turn and joins their errors.
func Multi(players ...Player) Player {
	return PlayerFunc(func(ctx context.Context, t Tone) error {
		var errs []error
		for _, p := range players {
			if err := p.Play(ctx, t); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
