// Package speech defines the capture and playback collaborators. The
// orchestration core only consumes transcribed text and emits narration, so
// recognizers and speakers are capability interfaces with interchangeable
// back-ends.
package speech

// Transcript is one recognition update. Interim updates carry the text heard
// so far; the final update is what the pipeline consumes.
type Transcript struct {
	Text  string
	Final bool
}

type Recognizer interface {
	StartRecognition() error
	StopRecognition() error
	// Results delivers interim and final transcripts. The channel closes
	// when recognition stops.
	Results() <-chan Transcript
	Errors() <-chan error
}

// Speaker narrates text to the user. Fire-and-forget.
type Speaker interface {
	Speak(text string)
}
