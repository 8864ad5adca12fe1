package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k4edit/k4"
)

func newTestSession(t *testing.T) *session {
	t.Helper()
	path := writeDump(t, t.TempDir(), "bank.syx")
	doc, err := k4.Open(path, nil)
	require.NoError(t, err)
	return &session{app: &app{cfg: defaultConfig()}, doc: doc}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServer(t *testing.T) {
	assert.NotNil(t, newMCPServer(newTestSession(t)))
}

func TestMCPDescribeLayout(t *testing.T) {
	s := newTestSession(t)
	res, err := s.describeLayout(context.Background(), toolRequest(map[string]any{"kind": "effect"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "submix_h.send2")

	res, err = s.describeLayout(context.Background(), toolRequest(map[string]any{"kind": "voice"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPList(t *testing.T) {
	s := newTestSession(t)
	res, err := s.list(context.Background(), toolRequest(map[string]any{"kind": "multi"}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "SPLIT")
	assert.NotContains(t, text, "PIANO")

	res, err = s.list(context.Background(), toolRequest(map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "PIANO")
}

func TestMCPGetAndSet(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	res, err := s.setField(ctx, toolRequest(map[string]any{
		"kind": "single", "index": 0.0, "field": "dca2.attack", "value": 42.0,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	res, err = s.setName(ctx, toolRequest(map[string]any{"kind": "single", "index": 0.0, "name": "ORGAN"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"ORGAN"`)

	res, err = s.getRecord(ctx, toolRequest(map[string]any{"kind": "single", "index": 0.0}))
	require.NoError(t, err)
	var rec recordJSON
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rec))
	assert.Equal(t, "ORGAN", rec.Name)
	assert.Equal(t, 42, rec.Fields["dca2.attack"])
	assert.True(t, rec.Valid)

	res, err = s.setField(ctx, toolRequest(map[string]any{
		"kind": "single", "index": 0.0, "field": "dca2.attack", "value": 500.0,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.setName(ctx, toolRequest(map[string]any{"kind": "drum", "index": 0.0, "name": "KICK"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.getRecord(ctx, toolRequest(map[string]any{"kind": "drum", "index": 99.0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.getRecord(ctx, toolRequest(map[string]any{"kind": "single"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestMCPRandomizeAndSave(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	res, err := s.randomize(ctx, toolRequest(map[string]any{"kind": "effect", "index": 2.0, "seed": 11.0}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "randomized 28 fields")

	res, err = s.randomize(ctx, toolRequest(map[string]any{"kind": "single", "index": 1.0, "group": "dcf2", "seed": 4.0}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "randomized 15 fields")
	res, err = s.randomize(ctx, toolRequest(map[string]any{"kind": "single", "index": 1.0, "group": "s"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.setField(ctx, toolRequest(map[string]any{
		"kind": "single", "index": 1.0, "field": "s1.fine", "value": 51.0,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "must be -50..50")

	out := filepath.Join(t.TempDir(), "saved.mid")
	res, err = s.save(ctx, toolRequest(map[string]any{"path": out}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	doc, err := k4.Open(out, nil)
	require.NoError(t, err)
	assert.Equal(t, k4.FormatSMF, doc.Format)
	assert.Equal(t, s.doc.Effects[2].Copy(), doc.Effects[2].Copy())
}
