package wire

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// FrameType discriminates inbound frames from the assistant service.
type FrameType string

const (
	FrameStatus    FrameType = "status"
	FrameChunk     FrameType = "chunk"
	FrameSource    FrameType = "source"
	FrameSources   FrameType = "sources"
	FrameError     FrameType = "error"
	FrameComplete  FrameType = "complete"
	FrameHeartbeat FrameType = "heartbeat"
)

// Source is a citation to a document backing part of an assistant reply.
type Source struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Bucket   string `json:"bucket"`
}

// Frame is one parsed inbound message. Exactly one of the payload fields is
// populated, depending on Type: Text for status/chunk/error, Source for
// source, Sources for sources. complete and heartbeat carry no payload.
type Frame struct {
	Type    FrameType
	Text    string
	Source  *Source
	Sources []Source
}

// Known reports whether the frame type is part of the protocol. Unknown
// types are not a parse error; callers log and ignore them.
func (f Frame) Known() bool {
	switch f.Type {
	case FrameStatus, FrameChunk, FrameSource, FrameSources, FrameError, FrameComplete, FrameHeartbeat:
		return true
	}
	return false
}

type rawFrame struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// ParseFrame decodes a raw text frame into its typed form. A missing
// discriminator or a content payload of the wrong shape is an error; an
// unrecognized discriminator is not.
func ParseFrame(data []byte) (Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{}, errors.Wrap(err, "decode frame")
	}
	if raw.Type == "" {
		return Frame{}, errors.New("frame has no type")
	}

	f := Frame{Type: FrameType(raw.Type)}
	switch f.Type {
	case FrameStatus, FrameChunk, FrameError:
		if err := json.Unmarshal(raw.Content, &f.Text); err != nil {
			return Frame{}, errors.Wrapf(err, "decode %s content", raw.Type)
		}
	case FrameSource:
		var s Source
		if err := json.Unmarshal(raw.Content, &s); err != nil {
			return Frame{}, errors.Wrap(err, "decode source content")
		}
		f.Source = &s
	case FrameSources:
		if err := json.Unmarshal(raw.Content, &f.Sources); err != nil {
			return Frame{}, errors.Wrap(err, "decode sources content")
		}
	case FrameComplete, FrameHeartbeat:
		// content is ignored for these
	}
	return f, nil
}
