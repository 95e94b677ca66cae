package transcript

import (
	"fmt"
	"os"
	"strings"

	"voxtail/internal/speech"
)

// ExtractAll reads an entire transcript and returns every assistant
// message that has a timestamp and non-empty normalized text, in file
// order. A missing file yields an empty result, not an error, so watch
// loops stay resilient to races between notification and deletion.
func ExtractAll(path string) ([]Message, error) {
	return ExtractNew(path, "")
}

// ExtractNew is ExtractAll restricted to messages whose timestamp is
// strictly greater than afterKey. An empty afterKey matches everything.
// The strict comparison means a key equal to the checkpoint is dropped,
// which is what guarantees at-most-once delivery per key within a run.
func ExtractNew(path, afterKey string) ([]Message, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close() //nolint:errcheck

	var messages []Message
	scanner := newScanner(file)
	for scanner.Scan() {
		if msg, ok := extractLine(scanner.Bytes(), afterKey); ok {
			messages = append(messages, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return messages, fmt.Errorf("scan transcript: %w", err)
	}

	return messages, nil
}

// ExtractFromLines applies the same filtering as ExtractNew to lines that
// have already been read, so the incremental path fed by a tail reader
// never re-reads the file.
func ExtractFromLines(lines []string, afterKey string) []Message {
	var messages []Message
	for _, line := range lines {
		if msg, ok := extractLine([]byte(line), afterKey); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// ExtractLatest scans the whole transcript and returns the last assistant
// message with non-empty normalized text. Unlike the incremental paths it
// does not require a timestamp, so it also works on transcripts that
// carry none. The second return value reports whether a message was found.
func ExtractLatest(path string) (Message, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Message{}, false, nil
		}
		return Message{}, false, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close() //nolint:errcheck

	var latest Message
	var found bool

	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		record, err := ParseRecord(line)
		if err != nil {
			continue // Skip malformed lines
		}
		if record.Role != RoleAssistant {
			continue
		}
		text := speech.Normalize(record.Text())
		if text == "" {
			continue
		}
		latest = Message{Timestamp: record.Timestamp, Text: text}
		found = true
	}
	if err := scanner.Err(); err != nil {
		return latest, found, fmt.Errorf("scan transcript: %w", err)
	}

	return latest, found, nil
}

// extractLine turns one raw transcript line into a speakable message.
// Lines that are blank, malformed, non-assistant, untimestamped, not
// newer than afterKey, or empty after normalization are rejected.
func extractLine(raw []byte, afterKey string) (Message, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Message{}, false
	}

	record, err := ParseRecord(raw)
	if err != nil {
		return Message{}, false
	}

	if record.Role != RoleAssistant || record.Timestamp == "" {
		return Message{}, false
	}

	// Ordering keys are ISO-8601 timestamps, so lexicographic comparison
	// matches chronological order.
	if afterKey != "" && record.Timestamp <= afterKey {
		return Message{}, false
	}

	text := speech.Normalize(record.Text())
	if text == "" {
		return Message{}, false
	}

	return Message{Timestamp: record.Timestamp, Text: text}, true
}
