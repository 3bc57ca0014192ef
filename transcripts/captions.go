package transcripts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatCaptionsJSON is the transcript_format value for caption arrays
// captured from a meeting client.
const FormatCaptionsJSON = "captions_json"

// Caption is one captured caption line.
type Caption struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// speakers emitted by the caption UI itself rather than by a participant
var noiseSpeakers = map[string]bool{
	"arrow_downward": true,
	"person_add":     true,
	"system":         true,
	"live captions":  true,
}

// FormatCaptions turns a JSON caption array into "[timestamp] speaker: text"
// lines, dropping UI noise and empty captions.
func FormatCaptions(raw []byte) (string, error) {
	var captions []Caption
	if err := json.Unmarshal(raw, &captions); err != nil {
		return "", fmt.Errorf("invalid caption JSON: %w", err)
	}

	lines := make([]string, 0, len(captions))
	for _, c := range captions {
		if noiseSpeakers[strings.ToLower(c.Speaker)] || strings.TrimSpace(c.Text) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", c.Timestamp, c.Speaker, c.Text))
	}
	return strings.Join(lines, "\n"), nil
}
