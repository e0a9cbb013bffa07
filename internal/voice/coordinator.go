package voice

import (
	"context"
	"strings"
	"sync"
)

// Coordinator enforces that capture and playback never overlap and that at
// most one utterance plays at a time.
type Coordinator struct {
	rec Recognizer
	syn Synthesizer

	// speakMu serializes engine calls so a late Cancel only reaches the
	// utterance it was meant for.
	speakMu sync.Mutex

	mu          sync.Mutex
	stopListen  context.CancelFunc
	session     uint64
	utterance   uint64
	speaking    bool
	lastFailure error
}

// NewCoordinator creates a Coordinator. Either engine may be nil.
func NewCoordinator(rec Recognizer, syn Synthesizer) *Coordinator {
	return &Coordinator{rec: rec, syn: syn}
}

// Listen stops any playback, then captures one utterance and returns its
// trimmed transcript.
func (c *Coordinator) Listen(ctx context.Context) (string, error) {
	if c.rec == nil {
		return "", ErrRecognitionUnavailable
	}

	c.mu.Lock()
	c.cancelSpeechLocked()
	c.stopListenLocked()
	ctx, cancel := context.WithCancel(ctx)
	c.session++
	id := c.session
	c.stopListen = cancel
	c.mu.Unlock()

	transcript, err := c.rec.Listen(ctx)

	c.mu.Lock()
	// A newer Listen may have replaced this one.
	if c.session == id {
		c.stopListen = nil
	}
	c.mu.Unlock()
	cancel()

	if err != nil {
		return "", err
	}
	return strings.TrimSpace(transcript), nil
}

// StopListening ends an active capture, if any.
func (c *Coordinator) StopListening() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopListenLocked()
}

// Speak stops capture and any current utterance, then speaks text. It
// returns once the utterance has been handed to the engine.
func (c *Coordinator) Speak(ctx context.Context, text string) error {
	if c.syn == nil || strings.TrimSpace(text) == "" {
		return ErrSynthesisUnavailable
	}

	c.speakMu.Lock()
	defer c.speakMu.Unlock()

	c.mu.Lock()
	c.stopListenLocked()
	c.cancelSpeechLocked()
	c.utterance++
	id := c.utterance
	c.lastFailure = nil
	// Set before the engine call so a Listen or CancelSpeech arriving while
	// the engine starts still cancels this utterance.
	c.speaking = true
	c.mu.Unlock()

	events, err := c.syn.Speak(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	superseded := c.utterance != id
	if err != nil {
		if !superseded {
			c.speaking = false
		}
		return &SynthesisError{Err: err}
	}
	if superseded {
		// Cancelled before the engine had started; stop it now.
		c.syn.Cancel()
	}

	go c.track(id, events)
	return nil
}

// CancelSpeech stops playback, if any.
func (c *Coordinator) CancelSpeech() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelSpeechLocked()
}

// BeforeSubmit is called when a query is submitted; it silences playback.
func (c *Coordinator) BeforeSubmit() {
	c.CancelSpeech()
}

// Listening reports whether a capture is active.
func (c *Coordinator) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopListen != nil
}

// Speaking reports whether an utterance is playing.
func (c *Coordinator) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// LastFailure returns the error of the most recent failed utterance.
func (c *Coordinator) LastFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFailure
}

func (c *Coordinator) track(id uint64, events <-chan Event) {
	for ev := range events {
		if ev.Kind != Ended && ev.Kind != Failed {
			continue
		}
		c.mu.Lock()
		if c.utterance == id {
			c.speaking = false
			if ev.Kind == Failed {
				c.lastFailure = &SynthesisError{Err: ev.Err}
			}
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) stopListenLocked() {
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
}

func (c *Coordinator) cancelSpeechLocked() {
	if c.syn == nil {
		return
	}
	if c.speaking {
		c.syn.Cancel()
		c.speaking = false
	}
	// Events from the cancelled utterance are ignored.
	c.utterance++
}
