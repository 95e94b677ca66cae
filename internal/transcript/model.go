// Package transcript provides parsing and message extraction for agent
// conversation logs stored as line-delimited JSON.
package transcript

// Role identifies the author of a transcript record.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlockType represents the "type" field in content blocks.
type ContentBlockType string

const (
	ContentBlockTypeText ContentBlockType = "text"
)

// ContentBlock is one element of a record's content array.
type ContentBlock struct {
	Type ContentBlockType
	Text string
}

// Record is a single parsed line of a transcript file.
type Record struct {
	Role    Role
	Content []ContentBlock

	// Timestamp is the record's ISO-8601 ordering key. Transcripts are
	// append-only, so timestamps are non-decreasing in file order. Empty
	// when the line carried no timestamp.
	Timestamp string
}

// Text joins the record's text content blocks with a single space.
// Non-text blocks (tool calls, tool results) are excluded.
func (r Record) Text() string {
	var out []byte
	for _, block := range r.Content {
		if block.Type != ContentBlockTypeText || block.Text == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, block.Text...)
	}
	return string(out)
}

// Message is a speakable assistant message extracted from a transcript.
type Message struct {
	// Timestamp orders and deduplicates messages. It may be empty only
	// for messages returned by ExtractLatest.
	Timestamp string
	// Text is the normalized message text. Never empty.
	Text string
}
