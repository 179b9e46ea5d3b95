package client

import (
	"github.com/rosettacloud/shellchat/pkg/session"
	"github.com/rosettacloud/shellchat/pkg/wire"
)

// onFrame routes one inbound frame to the session store. Frames are
// processed strictly in delivery order on the event loop.
func (c *Client) onFrame(t transport, data []byte) {
	if t != c.conn {
		return
	}

	f, err := wire.ParseFrame(data)
	if err != nil {
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("discarding malformed frame")
		c.append(session.NewMessage(session.RoleError, parseErrorNotice))
		return
	}

	switch f.Type {
	case wire.FrameStatus:
		c.log.Debug().Str("status", f.Text).Msg("server status")
	case wire.FrameChunk:
		// the payload is the full accumulated text for the in-progress
		// turn, so the trailing assistant message is replaced outright
		c.store.UpdateLastAssistant(f.Text)
	case wire.FrameSource:
		if f.Source != nil {
			c.store.AppendSource(*f.Source)
		}
	case wire.FrameSources:
		c.store.ReplaceSources(f.Sources)
	case wire.FrameError:
		c.append(session.NewMessage(session.RoleError, f.Text))
		c.store.SetLoading(false)
	case wire.FrameComplete:
		c.store.SetLoading(false)
		c.recordFinalAssistant()
	case wire.FrameHeartbeat:
		// liveness signal only
	default:
		c.log.Debug().Str("type", string(f.Type)).Msg("ignoring unrecognized frame type")
	}
}

// recordFinalAssistant persists the finished assistant turn. It runs on
// complete rather than per chunk so the transcript holds one row per turn.
func (c *Client) recordFinalAssistant() {
	if c.rec == nil {
		return
	}
	if m, ok := c.store.Snapshot().LastMessage(); ok && m.Role == session.RoleAssistant {
		c.record(m)
	}
}
