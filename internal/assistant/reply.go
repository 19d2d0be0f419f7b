package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reply is the decoded assistant payload: a single SQL statement plus the
// natural-language narration for the user.
type Reply struct {
	Query       string `json:"query"`
	Description string `json:"description"`
}

// ParseReply decodes the assistant's raw reply text. The query field commonly
// carries literal "\n" escape sequences that survived JSON round-tripping;
// they are replaced with single spaces so the statement stays parseable.
// Any malformation is ErrDecoding and terminal for the current query.
func ParseReply(raw string) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	if reply.Query == "" {
		return nil, fmt.Errorf("%w: missing query field", ErrDecoding)
	}
	if reply.Description == "" {
		return nil, fmt.Errorf("%w: missing description field", ErrDecoding)
	}

	reply.Query = strings.TrimSpace(strings.ReplaceAll(reply.Query, `\n`, " "))
	return &reply, nil
}
