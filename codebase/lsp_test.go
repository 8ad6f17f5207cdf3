package codebase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/gift"
)

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func newTestServer(t *testing.T, root string) (*LSPServer, *glsp.Context, *[]notification) {
	t.Helper()
	var sent []notification
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			sent = append(sent, notification{method, params.(protocol.PublishDiagnosticsParams)})
		},
	}

	ls := NewLSPServer("test", newChecker())
	_, err := ls.initialize(ctx, &protocol.InitializeParams{RootPath: &root})
	require.NoError(t, err)
	return ls, ctx, &sent
}

func TestLSPPublishesOnOpen(t *testing.T) {
	root := t.TempDir()
	ls, ctx, sent := newTestServer(t, root)

	uri := pathToURI(filepath.Join(root, "quiz.gift"))
	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "Q0 {T}\n\nQ1 ~ A : B\n"},
	}))

	require.Len(t, *sent, 1)
	n := (*sent)[0]
	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, n.method)
	assert.Equal(t, uri, n.params.URI)
	require.Len(t, n.params.Diagnostics, 2)

	first := n.params.Diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 2, Character: 3}, first.Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 4}, first.Range.End)
	assert.Equal(t, protocol.DiagnosticSeverityError, *first.Severity)

	second := n.params.Diagnostics[1]
	assert.Equal(t, protocol.Position{Line: 2, Character: 7}, second.Range.Start)
}

func TestLSPChangeAndClose(t *testing.T) {
	root := t.TempDir()
	ls, ctx, sent := newTestServer(t, root)
	uri := pathToURI(filepath.Join(root, "quiz.gift"))

	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "Q1 {T}"}},
	}))
	require.Len(t, *sent, 1)
	assert.Empty(t, (*sent)[0].params.Diagnostics)
	assert.NotNil(t, (*sent)[0].params.Diagnostics)

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, *sent, 2)
	assert.Equal(t, uri, (*sent)[1].params.URI)
	assert.Empty(t, (*sent)[1].params.Diagnostics)
}

func TestLSPCompletion(t *testing.T) {
	root := t.TempDir()
	ls, ctx, _ := newTestServer(t, root)
	uri := pathToURI(filepath.Join(root, "quiz.gift"))

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "::T:: [\n"},
	}))

	at := func(line, character protocol.UInteger) any {
		items, err := ls.textDocumentCompletion(ctx, &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: uri},
				Position:     protocol.Position{Line: line, Character: character},
			},
		})
		require.NoError(t, err)
		return items
	}

	items, ok := at(0, 7).([]protocol.CompletionItem)
	require.True(t, ok)
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"html", "markdown", "moodle", "plain"}, labels)

	assert.Nil(t, at(0, 3))
}

func TestFindTriggerPosition(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		line, col int
		want      int
	}{
		{"ascii", "::T:: [", 1, 7, 6},
		{"accented title", "::é:: [", 1, 7, 7},
		{"astral character", "😀[", 1, 3, 4},
		{"second line crlf", "Q {T}\r\nà [\r\n", 2, 3, 3},
		{"escaped", `a \[`, 1, 4, -1},
		{"not after bracket", "é [x", 1, 2, -1},
		{"line out of range", "[", 2, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findTriggerPosition([]byte(tt.content), tt.line, tt.col))
		})
	}
}

func TestToProtocolPosition(t *testing.T) {
	lines := []string{"a😀b:"}
	// column 4 is the colon, after a character that takes two UTF-16 units
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, toProtocolPosition(lines, 1, 4))
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, toProtocolPosition(lines, 0, 0))
	assert.Equal(t, protocol.Position{Line: 3, Character: 1}, toProtocolPosition(lines, 4, 2))
}

func TestToProtocolDiagnosticsNotes(t *testing.T) {
	report := diagnose.Report{
		Source: "Q1 : x",
		Diagnostics: []diagnose.Diagnostic{{
			Message: "Expected text.",
			Span: gift.Span{
				Start: gift.Position{Line: 1, Column: 4},
				End:   gift.Position{Line: 1, Column: 5},
			},
			Notes: []string{"escape it"},
		}},
	}
	diags := toProtocolDiagnostics(report)
	require.Len(t, diags, 1)
	assert.Equal(t, "Expected text.\nescape it", diags[0].Message)
	assert.Equal(t, "giftlint", *diags[0].Source)
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a quiz.gift")
	got, err := uriToPath(pathToURI(path))
	require.NoError(t, err)
	assert.Equal(t, path, got)
}
