// Package voice defines the speech input and output boundaries and keeps
// them mutually exclusive. Engines are supplied by the caller.
package voice

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is a recognition failure reported by the engine.
type ErrorCode string

const (
	NoSpeech          ErrorCode = "no-speech"
	Aborted           ErrorCode = "aborted"
	AudioCapture      ErrorCode = "audio-capture"
	Network           ErrorCode = "network"
	NotAllowed        ErrorCode = "not-allowed"
	ServiceNotAllowed ErrorCode = "service-not-allowed"
)

// RecognitionError is a typed recognition failure.
type RecognitionError struct {
	Code   ErrorCode
	Detail string
}

func (e *RecognitionError) Error() string {
	return UserMessage(e)
}

// UserMessage maps a recognition failure to the text shown to the user.
func UserMessage(e *RecognitionError) string {
	switch e.Code {
	case NoSpeech:
		return "No speech was detected. Please try again."
	case AudioCapture:
		return "Audio capture failed. Ensure microphone is connected and permissions are granted."
	case NotAllowed, ServiceNotAllowed:
		return "Microphone access denied. Please enable microphone permissions in your browser settings."
	}
	detail := e.Detail
	if detail == "" {
		detail = string(e.Code)
	}
	return "Speech recognition error: " + detail
}

var (
	// ErrRecognitionUnavailable is returned when no recognizer is configured.
	ErrRecognitionUnavailable = errors.New("Speech recognition is not available.")
	// ErrSynthesisUnavailable is returned when there is no synthesizer or
	// nothing to read.
	ErrSynthesisUnavailable = errors.New("Text-to-speech is not available or no response to read.")
)

// Recognizer captures one utterance. Listen blocks until a final transcript
// is available, the engine fails with a *RecognitionError, or ctx is done.
// Cancelling ctx stops the session.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// EventKind is a speech output lifecycle stage.
type EventKind int

const (
	Started EventKind = iota + 1
	Ended
	Failed
)

// Event is a speech output lifecycle event. Err is set for Failed.
type Event struct {
	Kind EventKind
	Err  error
}

// Synthesizer speaks text. The returned channel delivers lifecycle events
// and is closed after Ended or Failed. Cancel stops any utterance.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (<-chan Event, error)
	Cancel()
}

// SynthesisError wraps a synthesis failure for display.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("Text-to-speech error: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
