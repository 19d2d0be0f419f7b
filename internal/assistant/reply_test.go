package assistant

import (
	"errors"
	"strings"
	"testing"
)

func TestParseReply(t *testing.T) {
	raw := `{"query":"SELECT subject FROM notes WHERE location='Costco'","description":"Here is your Costco list."}`
	reply, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if reply.Query != "SELECT subject FROM notes WHERE location='Costco'" {
		t.Errorf("Query = %q", reply.Query)
	}
	if reply.Description != "Here is your Costco list." {
		t.Errorf("Description = %q", reply.Description)
	}
}

func TestParseReplyNormalizesEscapedNewlines(t *testing.T) {
	// The assistant sometimes emits queries whose newlines survive JSON
	// round-tripping as literal backslash-n pairs.
	raw := `{"query":"SELECT subject\\nFROM notes\\nWHERE status='Pending'","description":"Pending notes."}`
	reply, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if strings.Contains(reply.Query, `\n`) {
		t.Errorf("escaped newline markers left in query: %q", reply.Query)
	}
	want := "SELECT subject FROM notes WHERE status='Pending'"
	if reply.Query != want {
		t.Errorf("Query = %q, want %q", reply.Query, want)
	}
}

func TestParseReplyMalformedJSON(t *testing.T) {
	_, err := ParseReply(`not json at all`)
	if !errors.Is(err, ErrDecoding) {
		t.Errorf("error = %v, want ErrDecoding", err)
	}
}

func TestParseReplyMissingFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing query", `{"description":"Noted."}`},
		{"missing description", `{"query":"SELECT 1"}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseReply(tc.raw); !errors.Is(err, ErrDecoding) {
				t.Errorf("error = %v, want ErrDecoding", err)
			}
		})
	}
}
