package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rosettacloud/shellchat/pkg/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := session.NewMessage(session.RoleUser, "how do I grep recursively?")
	assistant := session.NewMessage(session.RoleAssistant, "use grep -r")
	assistant.Timestamp = user.Timestamp.Add(time.Second)

	require.NoError(t, s.Record(ctx, "sess-1", user))
	require.NoError(t, s.Record(ctx, "sess-1", assistant))

	msgs, err := s.Messages(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, session.RoleUser, msgs[0].Role)
	require.Equal(t, "use grep -r", msgs[1].Content)
}

func TestStore_RecordIsIdempotentPerMessageID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := session.NewMessage(session.RoleAssistant, "draft")
	require.NoError(t, s.Record(ctx, "sess-1", m))
	m.Content = "final"
	require.NoError(t, s.Record(ctx, "sess-1", m))

	msgs, err := s.Messages(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "final", msgs[0].Content)
}

func TestStore_SessionsListing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "sess-a", session.NewMessage(session.RoleUser, "one")))
	require.NoError(t, s.Record(ctx, "sess-a", session.NewMessage(session.RoleAssistant, "two")))
	require.NoError(t, s.Record(ctx, "sess-b", session.NewMessage(session.RoleUser, "three")))

	infos, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]SessionInfo{}
	for _, info := range infos {
		byID[info.SessionID] = info
	}
	require.Equal(t, 2, byID["sess-a"].Messages)
	require.Equal(t, 1, byID["sess-b"].Messages)
}

func TestStore_RejectsEmptySessionID(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), " ", session.NewMessage(session.RoleUser, "x"))
	require.ErrorContains(t, err, "empty session id")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	msgs := []session.Message{
		session.NewMessage(session.RoleUser, "hi"),
		session.NewMessage(session.RoleAssistant, "hello"),
	}
	require.NoError(t, WriteMarkdown(&buf, "sess-1", msgs))
	out := buf.String()
	require.Contains(t, out, "# Session sess-1")
	require.Contains(t, out, "**user**")
	require.Contains(t, out, "hello")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	msgs := []session.Message{session.NewMessage(session.RoleUser, "hi")}
	require.NoError(t, WriteJSON(&buf, "sess-1", msgs))

	var doc struct {
		SessionID string            `json:"session_id"`
		Messages  []session.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "sess-1", doc.SessionID)
	require.Len(t, doc.Messages, 1)
}
