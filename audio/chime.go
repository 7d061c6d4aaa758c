package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"snake-arena/game/types"
)

const (
	sampleRate   = beep.SampleRate(44100)
	chimeLength  = 60 * time.Millisecond
	baseFreq     = 660.0
	stepFreq     = 55.0
	stepsPerWrap = 8
)

// Chime is a score sink that plays a short sine tone whenever a score goes
// up. Higher scores ring higher, wrapping every few points.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	log         zerolog.Logger
}

func NewChime(logger zerolog.Logger) *Chime {
	return &Chime{
		mixer: &beep.Mixer{},
		log:   logger.With().Str("component", "audio").Logger(),
	}
}

// Initialize opens the speaker. Until it succeeds the chime stays silent.
func (c *Chime) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

func (c *Chime) ResetScore() {}

// UpdateScore rings for any snake that scored. Join announcements carry a
// zero score and stay silent.
func (c *Chime) UpdateScore(_ types.ClientID, score int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || score <= 0 {
		return
	}

	tone, err := chimeTone(score)
	if err != nil {
		c.log.Warn().Err(err).Msg("tone")
		return
	}
	speaker.Lock()
	c.mixer.Add(tone)
	speaker.Unlock()
}

// Close silences the mixer and releases the speaker.
func (c *Chime) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	c.initialized = false
	return nil
}

func chimeFrequency(score int) float64 {
	if score < 0 {
		score = 0
	}
	return baseFreq + stepFreq*float64(score%stepsPerWrap)
}

func chimeTone(score int) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, chimeFrequency(score))
	if err != nil {
		return nil, err
	}
	return beep.Take(sampleRate.N(chimeLength), sine), nil
}
