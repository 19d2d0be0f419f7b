package speech

import (
	"bufio"
	"fmt"
	"io"
	"sync"
)

// ConsoleRecognizer is a typed-text stand-in for a speech back-end: every
// line read is emitted as a final transcript.
type ConsoleRecognizer struct {
	reader  io.Reader
	results chan Transcript
	errs    chan error

	mu      sync.Mutex
	started bool
	stop    chan struct{}
}

func NewConsoleRecognizer(reader io.Reader) *ConsoleRecognizer {
	return &ConsoleRecognizer{
		reader:  reader,
		results: make(chan Transcript),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
	}
}

func (r *ConsoleRecognizer) StartRecognition() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("speech: recognition already started")
	}
	r.started = true

	go func() {
		defer close(r.results)
		scanner := bufio.NewScanner(r.reader)
		for scanner.Scan() {
			select {
			case r.results <- Transcript{Text: scanner.Text(), Final: true}:
			case <-r.stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.errs <- err
		}
	}()
	return nil
}

func (r *ConsoleRecognizer) StopRecognition() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	return nil
}

func (r *ConsoleRecognizer) Results() <-chan Transcript {
	return r.results
}

func (r *ConsoleRecognizer) Errors() <-chan error {
	return r.errs
}

// ConsoleSpeaker writes narration to a writer instead of synthesizing audio.
type ConsoleSpeaker struct {
	writer io.Writer
}

func NewConsoleSpeaker(writer io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{writer: writer}
}

func (s *ConsoleSpeaker) Speak(text string) {
	fmt.Fprintf(s.writer, "%s\n", text)
}
