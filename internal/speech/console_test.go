package speech

import (
	"strings"
	"testing"
	"time"
)

func TestConsoleRecognizerEmitsFinalTranscripts(t *testing.T) {
	r := NewConsoleRecognizer(strings.NewReader("buy two eggs\nwhat do I need\n"))
	if err := r.StartRecognition(); err != nil {
		t.Fatalf("StartRecognition: %v", err)
	}

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case tr, ok := <-r.Results():
			if !ok {
				if len(got) != 2 {
					t.Fatalf("transcripts = %v, want 2 entries", got)
				}
				if got[0] != "buy two eggs" || got[1] != "what do I need" {
					t.Errorf("transcripts = %v", got)
				}
				return
			}
			if !tr.Final {
				t.Error("console recognizer should only emit final transcripts")
			}
			got = append(got, tr.Text)
		case <-timeout:
			t.Fatal("timed out waiting for transcripts")
		}
	}
}

func TestConsoleRecognizerDoubleStart(t *testing.T) {
	r := NewConsoleRecognizer(strings.NewReader(""))
	if err := r.StartRecognition(); err != nil {
		t.Fatalf("StartRecognition: %v", err)
	}
	if err := r.StartRecognition(); err == nil {
		t.Error("second StartRecognition should fail")
	}
	if err := r.StopRecognition(); err != nil {
		t.Errorf("StopRecognition: %v", err)
	}
	// Stopping twice is harmless.
	if err := r.StopRecognition(); err != nil {
		t.Errorf("StopRecognition (second): %v", err)
	}
}

func TestConsoleSpeaker(t *testing.T) {
	var b strings.Builder
	s := NewConsoleSpeaker(&b)
	s.Speak("Noted, you will buy two eggs from Costco.")
	if b.String() != "Noted, you will buy two eggs from Costco.\n" {
		t.Errorf("output = %q", b.String())
	}
}
