// Package alarm plays the rest timer's expiry alarm.
//
// An alarm is three tones: a longer chirp that steps 800→600→800 Hz and two
// short beeps, 600ms apart, each fading out. Tones are synthesized to PCM
// and handed to a Player. Playback is best effort; a missing audio device
// never surfaces as an error to the timer.
package alarm

import (
	"math"
	"time"
)

// DefaultSampleRate is the PCM rate used for synthesized tones.
const DefaultSampleRate = 22050

// Step switches the oscillator frequency at Offset from the tone start.
type Step struct {
	Offset    time.Duration
	Frequency float64
}

// Tone is a single oscillator burst with an exponential fade.
type Tone struct {
	Name      string
	Steps     []Step
	Duration  time.Duration
	StartGain float64
	EndGain   float64
}

var (
	// Chirp opens the alarm.
	Chirp = Tone{
		Name: "chirp",
		Steps: []Step{
			{Offset: 0, Frequency: 800},
			{Offset: 100 * time.Millisecond, Frequency: 600},
			{Offset: 200 * time.Millisecond, Frequency: 800},
		},
		Duration:  500 * time.Millisecond,
		StartGain: 0.3,
		EndGain:   0.01,
	}

	// Beep follows the chirp twice.
	Beep = Tone{
		Name:      "beep",
		Steps:     []Step{{Offset: 0, Frequency: 800}},
		Duration:  300 * time.Millisecond,
		StartGain: 0.2,
		EndGain:   0.01,
	}
)

// ToneByName returns one of the built-in tones.
func ToneByName(name string) (Tone, bool) {
	switch name {
	case Chirp.Name:
		return Chirp, true
	case Beep.Name:
		return Beep, true
	}
	return Tone{}, false
}

// frequencyAt returns the oscillator frequency in effect at offset.
func (t Tone) frequencyAt(offset time.Duration) float64 {
	f := 0.0
	for _, s := range t.Steps {
		if s.Offset > offset {
			break
		}
		f = s.Frequency
	}
	return f
}

// gainAt follows an exponential ramp from StartGain to EndGain.
func (t Tone) gainAt(offset time.Duration) float64 {
	if t.Duration <= 0 || t.StartGain <= 0 || t.EndGain <= 0 {
		return t.StartGain
	}
	frac := float64(offset) / float64(t.Duration)
	if frac > 1 {
		frac = 1
	}
	return t.StartGain * math.Pow(t.EndGain/t.StartGain, frac)
}

// Render synthesizes the tone as mono 16-bit PCM.
func Render(t Tone, sampleRate int) []int16 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	n := int(math.Round(t.Duration.Seconds() * float64(sampleRate)))
	out := make([]int16, n)
	phase := 0.0
	for i := range out {
		offset := time.Duration(float64(i) / float64(sampleRate) * float64(time.Second))
		phase += 2 * math.Pi * t.frequencyAt(offset) / float64(sampleRate)
		v := math.Sin(phase) * t.gainAt(offset)
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}
