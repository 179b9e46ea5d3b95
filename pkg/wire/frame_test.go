package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrame_Chunk(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"chunk","content":"Hi there"}`))
	require.NoError(t, err)
	require.Equal(t, FrameChunk, f.Type)
	require.Equal(t, "Hi there", f.Text)
}

func TestParseFrame_Source(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"source","content":{"filename":"a.sh","path":"scripts/a.sh","bucket":"kb"}}`))
	require.NoError(t, err)
	require.Equal(t, FrameSource, f.Type)
	require.NotNil(t, f.Source)
	require.Equal(t, "a.sh", f.Source.Filename)
	require.Equal(t, "scripts/a.sh", f.Source.Path)
	require.Equal(t, "kb", f.Source.Bucket)
}

func TestParseFrame_Sources(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"sources","content":[{"filename":"b.sh","path":"p","bucket":"kb"}]}`))
	require.NoError(t, err)
	require.Equal(t, FrameSources, f.Type)
	require.Len(t, f.Sources, 1)
	require.Equal(t, "b.sh", f.Sources[0].Filename)
}

func TestParseFrame_CompleteIgnoresContent(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"complete","content":"Response complete"}`))
	require.NoError(t, err)
	require.Equal(t, FrameComplete, f.Type)
	require.Empty(t, f.Text)

	f, err = ParseFrame([]byte(`{"type":"heartbeat"}`))
	require.NoError(t, err)
	require.Equal(t, FrameHeartbeat, f.Type)
}

func TestParseFrame_UnknownTypeIsNotAnError(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"telemetry","content":{"x":1}}`))
	require.NoError(t, err)
	require.False(t, f.Known())
	require.Equal(t, FrameType("telemetry"), f.Type)
}

func TestParseFrame_Malformed(t *testing.T) {
	_, err := ParseFrame([]byte(`not json`))
	require.Error(t, err)

	_, err = ParseFrame([]byte(`{"content":"no type"}`))
	require.Error(t, err)

	// wrong content shape for a typed frame
	_, err = ParseFrame([]byte(`{"type":"chunk","content":{"nested":true}}`))
	require.Error(t, err)

	_, err = ParseFrame([]byte(`{"type":"source","content":"not an object"}`))
	require.Error(t, err)
}

func TestChatRequest_WireShape(t *testing.T) {
	req := NewChatRequest("sess-1", "How do I use awk?", "")
	b, err := req.Encode()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, "sess-1", got["session_id"])
	require.Equal(t, "How do I use awk?", got["prompt"])
	require.Equal(t, DefaultModelID, got["bedrock_model_id"])
	require.Equal(t, "concise", got["response_style"])

	kwargs, ok := got["model_kwargs"].(map[string]any)
	require.True(t, ok)
	require.InDelta(t, 0.7, kwargs["temperature"], 1e-9)
	require.EqualValues(t, 1024, kwargs["maxTokenCount"])
	require.EqualValues(t, 15000, kwargs["timeoutInMillis"])
}

func TestChatRequest_ModelOverride(t *testing.T) {
	req := NewChatRequest("sess-1", "hi", "amazon.nova-lite-v1:0")
	require.Equal(t, "amazon.nova-lite-v1:0", req.BedrockModelID)
}
