package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

type rawEntry struct {
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`

	// Older transcripts carry role and content at the top level instead
	// of nesting them under "message".
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type messagePayload struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseRecord decodes one transcript line. Lines that are not valid JSON
// objects fail; callers skip them and continue with the next line.
func ParseRecord(raw []byte) (Record, error) {
	var entry rawEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Record{}, fmt.Errorf("unmarshal entry: %w", err)
	}

	record := Record{Timestamp: entry.Timestamp}

	if len(entry.Message) > 0 {
		var msg messagePayload
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			return Record{}, fmt.Errorf("unmarshal message: %w", err)
		}
		record.Role = Role(msg.Role)
		record.Content = decodeContent(msg.Content)
		return record, nil
	}

	record.Role = Role(entry.Role)
	record.Content = decodeContent(entry.Content)
	return record, nil
}

func decodeContent(raw json.RawMessage) []ContentBlock {
	if len(raw) == 0 {
		return nil
	}

	// Try as string first (simple message)
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []ContentBlock{{Type: ContentBlockTypeText, Text: asString}}
	}

	// Try as array of content blocks
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	result := make([]ContentBlock, 0, len(blocks))
	for _, block := range blocks {
		result = append(result, ContentBlock{
			Type: ContentBlockType(block.Type),
			Text: block.Text,
		})
	}
	return result
}

func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	// Allow large payloads
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}
