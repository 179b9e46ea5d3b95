package transcript

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/rosettacloud/shellchat/pkg/session"
)

// WriteMarkdown renders a session transcript as a markdown document.
func WriteMarkdown(w io.Writer, sessionID string, msgs []session.Message) error {
	if _, err := fmt.Fprintf(w, "# Session %s\n\n**Messages:** %d\n\n---\n\n", sessionID, len(msgs)); err != nil {
		return errors.Wrap(err, "export markdown")
	}
	for _, m := range msgs {
		if _, err := fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", m.Role, m.Timestamp.Format("2006-01-02 15:04:05"), m.Content); err != nil {
			return errors.Wrap(err, "export markdown")
		}
	}
	return nil
}

// WriteJSON renders a session transcript as indented JSON.
func WriteJSON(w io.Writer, sessionID string, msgs []session.Message) error {
	doc := struct {
		SessionID string            `json:"session_id"`
		Messages  []session.Message `json:"messages"`
	}{SessionID: sessionID, Messages: msgs}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "export json")
}
