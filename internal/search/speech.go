package search

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	ErrSpeechUnsupported = errors.New("speech recognition is not supported")
	ErrNotListening      = errors.New("speech recognition is not listening")
	ErrAlreadyListening  = errors.New("speech recognition already listening")
)

// SpeechUnsupportedNotice is shown when voice input is requested on a
// client without a recognizer.
const SpeechUnsupportedNotice = "Speech recognition is not supported in your browser"

// SpeechResult is one outcome of a recognition session.
type SpeechResult struct {
	Transcript string
	Err        error
}

// SpeechProvider is a capability-checked voice input source. Listen starts a
// single-shot recognition; the channel yields at most one transcript or
// error and is closed when recognition ends.
type SpeechProvider interface {
	Supported() bool
	Listen(ctx context.Context) (<-chan SpeechResult, error)
}

type unavailable struct{}

func (unavailable) Supported() bool { return false }

func (unavailable) Listen(context.Context) (<-chan SpeechResult, error) {
	return nil, ErrSpeechUnsupported
}

// Unavailable is the provider for clients without speech recognition.
var Unavailable SpeechProvider = unavailable{}

// Relay is a provider whose recognition runs in the browser; the browser
// posts its outcome back and the relay forwards it to the listener.
type Relay struct {
	mu   sync.Mutex
	ch   chan SpeechResult
	stop func() bool
}

func NewRelay() *Relay { return &Relay{} }

func (r *Relay) Supported() bool { return true }

func (r *Relay) Listen(ctx context.Context) (<-chan SpeechResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil {
		return nil, ErrAlreadyListening
	}
	ch := make(chan SpeechResult, 1)
	r.ch = ch
	r.stop = context.AfterFunc(ctx, func() { r.finish(ch, nil) })
	return ch, nil
}

// Listening reports whether a recognition is in progress.
func (r *Relay) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch != nil
}

// Deliver forwards a final transcript and ends the recognition.
func (r *Relay) Deliver(transcript string) error {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return r.End()
	}
	return r.current(&SpeechResult{Transcript: transcript})
}

// Fail forwards a recognizer error and ends the recognition.
func (r *Relay) Fail(err error) error {
	if err == nil {
		err = errors.New("speech recognition failed")
	}
	return r.current(&SpeechResult{Err: err})
}

// End finishes the recognition without a result.
func (r *Relay) End() error {
	return r.current(nil)
}

func (r *Relay) current(res *SpeechResult) error {
	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()
	if ch == nil {
		return ErrNotListening
	}
	r.finish(ch, res)
	return nil
}

func (r *Relay) finish(ch chan SpeechResult, res *SpeechResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != ch {
		return
	}
	if res != nil {
		ch <- *res
	}
	close(ch)
	r.ch = nil
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}
